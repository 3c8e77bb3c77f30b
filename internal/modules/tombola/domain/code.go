package domain

// codeAlphabet leaves out 0, O, 1 and I. Codes are typed by hand from a
// projected board, so visually ambiguous characters are banned.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength   = 6
)

// NewCode samples a session code from the 32-symbol alphabet. Uniqueness
// against live sessions is the repository's job; this is just the draw.
func NewCode(picker Picker) string {
	code := make([]byte, CodeLength)
	for i := range code {
		code[i] = codeAlphabet[picker.Pick(len(codeAlphabet))]
	}
	return string(code)
}
