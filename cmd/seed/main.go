// Command seed fills a running tombola with fake participants, which is
// handy when testing the board animation with a realistic crowd.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"
)

var firstNames = []string{
	"Jean", "Marie", "Pierre", "Sophie", "Luc", "Julie", "Paul", "Emma",
	"Thomas", "Léa", "Antoine", "Chloé", "Nicolas", "Laura", "Alexandre",
	"Camille", "Julien", "Sarah", "Maxime", "Manon", "Lucas", "Anaïs",
	"Hugo", "Clara", "Louis", "Inès", "Arthur", "Lucie", "Gabriel", "Zoé",
}

var lastNames = []string{
	"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard", "Petit",
	"Durand", "Leroy", "Moreau", "Simon", "Laurent", "Lefebvre", "Michel",
	"Garcia", "David", "Bertrand", "Roux", "Vincent", "Fournier", "Morel",
	"Girard", "André", "Lefevre", "Mercier", "Dupont", "Lambert", "Bonnet",
	"François", "Martinez",
}

func main() {
	code := flag.String("code", "", "tombola code to join")
	count := flag.Int("count", 30, "number of fake participants")
	baseURL := flag.String("base-url", "http://localhost:8080", "server base URL")
	flag.Parse()

	if *code == "" {
		log.Fatal("-code is required")
	}

	client := &http.Client{
		Timeout: 10 * time.Second,
		// Joining redirects to the online view; following it would only
		// open pages nobody is looking at.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	joined := 0
	for i := 0; i < *count; i++ {
		firstName := firstNames[rand.IntN(len(firstNames))]
		lastName := lastNames[rand.IntN(len(lastNames))]
		// Accented names do not survive email validation, so the address
		// is synthetic rather than name-derived.
		email := fmt.Sprintf("player.%d.%d@example.com", i, time.Now().UnixNano())

		form := url.Values{
			"firstName": {firstName},
			"lastName":  {lastName},
			"email":     {email},
		}

		resp, err := client.PostForm(fmt.Sprintf("%s/join/%s", *baseURL, *code), form)
		if err != nil {
			log.Fatalf("join request failed: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusFound {
			log.Fatalf("join returned %d for %s %s", resp.StatusCode, firstName, lastName)
		}

		joined++
	}

	log.Printf("joined %d participants to tombola %s", joined, *code)
}
