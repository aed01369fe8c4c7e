package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	BaseURL   = "http://localhost:8080"
	WSURL     = "ws://localhost:8080/ws/chat"
	PairCount = 100 // each pair is two users posting reciprocal offers
	MsgCount  = 20  // chat messages per user
)

type authResponse struct {
	Token    string `json:"access_token"`
	Username string `json:"username"`
}

type offerResponse struct {
	Offer struct {
		ID          string  `json:"id"`
		Status      string  `json:"status"`
		MatchedWith *string `json:"matched_with"`
	} `json:"offer"`
}

func main() {
	log.Printf("starting load test: %d pairs, %d messages each", PairCount, MsgCount)
	var wg sync.WaitGroup

	for i := 0; i < PairCount; i++ {
		wg.Add(1)
		go func(pairID int) {
			defer wg.Done()
			runPair(pairID)
		}(i)
	}

	wg.Wait()
	log.Println("load test complete")
}

func runPair(pairID int) {
	userA := fmt.Sprintf("u_%d_a", pairID)
	userB := fmt.Sprintf("u_%d_b", pairID)
	pass := "password123"

	tokenA := authenticate(userA, pass)
	tokenB := authenticate(userB, pass)
	if tokenA == "" || tokenB == "" {
		return
	}

	// Unique item names per pair so pairs never cross-match.
	haveA := fmt.Sprintf("item_%d_x", pairID)
	wantA := fmt.Sprintf("item_%d_y", pairID)

	offerA := createOffer(tokenA, haveA, wantA)
	offerB := createOffer(tokenB, wantA, haveA)
	if offerA == "" || offerB == "" {
		return
	}

	var wsWg sync.WaitGroup
	wsWg.Add(2)
	go spamChat(&wsWg, offerA, userA)
	go spamChat(&wsWg, offerA, userB)
	wsWg.Wait()
}

func authenticate(username, password string) string {
	// Signup may 409 on reruns, which is fine.
	postJSON("/signup", "", map[string]string{"username": username, "password": password})

	resp, err := postJSON("/login", "", map[string]string{"username": username, "password": password})
	if err != nil {
		log.Printf("login failed [%s]: %v", username, err)
		return ""
	}
	defer resp.Body.Close()

	var data authResponse
	json.NewDecoder(resp.Body).Decode(&data)
	return data.Token
}

func createOffer(token, have, want string) string {
	body := map[string]any{
		"have_item": map[string]string{"name": have, "quantity": "1 bag"},
		"want_item": map[string]string{"name": want, "quantity": "1 bag"},
		"location":  "loadtest",
	}

	resp, err := postJSON("/offers", token, body)
	if err != nil || resp.StatusCode != http.StatusCreated {
		log.Printf("create offer failed: %v", err)
		return ""
	}
	defer resp.Body.Close()

	var data offerResponse
	json.NewDecoder(resp.Body).Decode(&data)
	return data.Offer.ID
}

func spamChat(wg *sync.WaitGroup, offerID, user string) {
	defer wg.Done()

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("%s/%s", WSURL, offerID), nil)
	if err != nil {
		log.Printf("ws connect failed [%s]: %v", user, err)
		return
	}
	defer conn.Close()

	// Drain broadcasts so the server's send buffer never fills.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for i := 0; i < MsgCount; i++ {
		msg := map[string]string{
			"sender":  user,
			"content": fmt.Sprintf("loadtest msg %d from %s", i, user),
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("send failed [%s]: %v", user, err)
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	log.Printf("%s finished sending %d msgs", user, MsgCount)
}

func postJSON(endpoint, token string, data any) (*http.Response, error) {
	jsonData, _ := json.Marshal(data)
	req, err := http.NewRequest("POST", BaseURL+endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return http.DefaultClient.Do(req)
}
