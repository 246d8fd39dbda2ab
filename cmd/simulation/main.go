package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Set via env so tokens never land in the repo.
var accessToken = os.Getenv("SIMULATION_ACCESS_TOKEN")

func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🚀 Starting Canvas Agent Simulation\n")

	if accessToken == "" {
		color.Red("SIMULATION_ACCESS_TOKEN is not set")
		os.Exit(1)
	}

	// 1. Create a canvas to work on
	color.Yellow("\n1. Create Canvas")
	resp, body, err := sendRequest("POST", "/canvas/v1", map[string]interface{}{
		"name": "Simulation Canvas",
		"tags": []string{"simulation"},
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var createResp struct {
		Data struct {
			Id string `json:"id"`
		} `json:"data"`
	}
	json.Unmarshal(body, &createResp)
	canvasId := createResp.Data.Id
	if canvasId == "" {
		color.Red("No canvas id in response")
		prettyPrint(string(body))
		os.Exit(1)
	}
	fmt.Printf("Canvas: %s\n", canvasId)

	// 2. Exercise the agent via the blocking endpoint
	color.Yellow("\n2. Agent Execute")
	instructions := []string{
		"Add a section called 'Project Plan' with a paragraph about the rollout schedule.",
		"Add a task list with items: write docs, review API, ship release.",
	}

	for _, text := range instructions {
		fmt.Printf("\nUSER: %s\n", text)
		start := time.Now()
		resp, body, err := sendRequest("POST", "/agent/v1/execute", map[string]interface{}{
			"canvas_id": canvasId,
			"message":   text,
		})
		elapsed := time.Since(start)
		if err != nil {
			color.Red("Failed: %v", err)
			continue
		}
		color.Green("Status: %s (%v)", resp.Status, elapsed)

		var execResp struct {
			Data struct {
				Message          string `json:"message"`
				CreditsRemaining int    `json:"credits_remaining"`
			} `json:"data"`
		}
		json.Unmarshal(body, &execResp)
		fmt.Printf("AGENT: %s\n", execResp.Data.Message)
		fmt.Printf("Credits remaining: %d\n", execResp.Data.CreditsRemaining)
	}

	// 3. Exercise the streaming endpoint and print frames as they come
	color.Yellow("\n3. Agent Execute (streaming)")
	streamBody, _ := json.Marshal(map[string]interface{}{
		"canvas_id": canvasId,
		"message":   "Replace 'rollout' with 'launch' everywhere.",
	})
	req, _ := http.NewRequest("POST", baseURL+"/agent/v1/execute-stream", bytes.NewBuffer(streamBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	streamResp, err := http.DefaultClient.Do(req)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	defer streamResp.Body.Close()

	scanner := bufio.NewScanner(streamResp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame map[string]interface{}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame); err != nil {
			continue
		}
		event, _ := frame["event"].(string)
		switch event {
		case "tool_call":
			color.Magenta("→ %s %v", frame["tool_name"], frame["tool_args"])
		case "tool_result":
			fmt.Printf("  %v\n", frame["result"])
		case "completed":
			color.Green("DONE: %v (credits: %v)", frame["message"], frame["credits_remaining"])
		case "error":
			color.Red("ERROR: %v", frame["message"])
		default:
			prettyPrint(frame)
		}
	}

	// 4. Show final structure
	color.Yellow("\n4. Canvas Structure")
	resp, body, err = sendRequest("GET", "/canvas/v1/"+canvasId+"/structure", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var structResp map[string]interface{}
	json.Unmarshal(body, &structResp)
	prettyPrint(structResp)
}
