// Command feedtail subscribes to a live feed endpoint and prints records as
// they arrive. It can present an existing token or log in first:
//
//	feedtail -endpoint http://localhost:8080 -token $TOKEN
//	feedtail -endpoint http://localhost:8080 -username alice -password ...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bazarlabs/livefeed/httpclient"
	"github.com/bazarlabs/livefeed/logger"
	"github.com/bazarlabs/livefeed/stream"
)

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080", "feed server base URL")
	token := flag.String("token", os.Getenv("FEED_TOKEN"), "bearer token (or FEED_TOKEN env)")
	username := flag.String("username", "", "log in with this username instead of -token")
	pass := flag.String("password", os.Getenv("FEED_PASSWORD"), "password for -username (or FEED_PASSWORD env)")
	only := flag.String("event", "", "print only this event type")
	flag.Parse()

	log := logger.NewFromEnv("feedtail")
	logger.SetGlobalLogger(log)

	bearer := *token
	if bearer == "" && *username != "" {
		var err error
		bearer, err = login(*endpoint, *username, *pass)
		if err != nil {
			fmt.Fprintf(os.Stderr, "feedtail: login failed: %v\n", err)
			os.Exit(1)
		}
	}
	if bearer == "" {
		fmt.Fprintln(os.Stderr, "feedtail: a token is required (-token, FEED_TOKEN, or -username/-password)")
		os.Exit(2)
	}

	session := stream.Start(stream.Config{
		Endpoint: *endpoint + "/api/events",
		Token:    bearer,
		Enabled:  true,
		Logger:   log,
		Wildcard: func(event string, data json.RawMessage) {
			if *only != "" && event != *only {
				return
			}
			fmt.Printf("%s  %-18s %s\n", time.Now().Format(time.TimeOnly), event, data)
		},
	})
	defer session.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}

// login exchanges credentials for a bearer token.
func login(baseURL, username, pass string) (string, error) {
	client, err := httpclient.New(httpclient.Config{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
		Retry:   httpclient.DefaultRetryConfig(),
	})
	if err != nil {
		return "", err
	}

	resp, err := client.Do(context.Background(), httpclient.Request{
		Method: http.MethodPost,
		Path:   "/api/auth/login",
		Body:   map[string]string{"username": username, "password": pass},
	})
	if err != nil {
		return "", err
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	return out.AccessToken, nil
}
