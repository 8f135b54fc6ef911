package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fatih/color"
)

// Simplified DTOs for the script
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type createSessionData struct {
	ID         string `json:"id"`
	Transcript []turn `json:"transcript"`
}

type transcriptData struct {
	Turns []turn `json:"turns"`
}

type unreadData struct {
	Count int `json:"count"`
}

var baseURL string

func main() {
	flag.StringVar(&baseURL, "base", "http://localhost:3000/api", "API base URL")
	wait := flag.Duration("wait", time.Second, "time to wait for each assistant reply")
	flag.Parse()

	color.Cyan("=== Smart City Console Simulation ===\n")

	color.Yellow("\n1. Unread alerts")
	var unread unreadData
	if err := call(http.MethodGet, "/notifications/unread-count", nil, &unread); err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Unread: %d", unread.Count)
	}

	color.Yellow("\n2. Create chat session")
	var session createSessionData
	if err := call(http.MethodPost, "/chatbot/v1/sessions", nil, &session); err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	color.Green("Session: %s", session.ID)
	printTurns(session.Transcript)

	color.Yellow("\n3. Quick suggestions")
	var suggestions []string
	if err := call(http.MethodGet, "/chatbot/v1/suggestions", nil, &suggestions); err != nil {
		log.Fatalf("Failed to get suggestions: %v", err)
	}

	for _, text := range append(suggestions, "what is the meaning of life") {
		color.Magenta("\nUSER: %s", text)
		body := map[string]string{"chat_session_id": session.ID, "chat": text}
		if err := call(http.MethodPost, "/chatbot/v1/chat", body, nil); err != nil {
			color.Red("Failed: %v", err)
			continue
		}
		time.Sleep(*wait)
	}

	color.Yellow("\n4. Transcript")
	var transcript transcriptData
	if err := call(http.MethodGet, "/chatbot/v1/sessions/"+session.ID+"/transcript", nil, &transcript); err != nil {
		color.Red("Failed: %v", err)
	} else {
		printTurns(transcript.Turns)
	}

	color.Yellow("\n5. Mark all alerts read")
	if err := call(http.MethodPatch, "/notifications/read-all", nil, &unread); err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Unread: %d", unread.Count)
	}

	if err := call(http.MethodDelete, "/chatbot/v1/sessions/"+session.ID, nil, nil); err != nil {
		color.Red("Failed to close session: %v", err)
	}
}

func printTurns(turns []turn) {
	for _, t := range turns {
		if t.Speaker == "user" {
			fmt.Printf("  %s: %s\n", color.MagentaString("USER"), t.Text)
		} else {
			fmt.Printf("  %s: %s\n", color.CyanString("ASSISTANT"), t.Text)
		}
	}
}

func call(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("status %d: %s", resp.StatusCode, raw)
	}
	if !env.Success {
		return fmt.Errorf("status %d: %s", resp.StatusCode, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
