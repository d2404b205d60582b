package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

// doerFunc adapts a function to the Doer interface for tests.
type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestClientSend_Success(t *testing.T) {
	var captured *http.Request
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(200, `{"choices":[{"message":{"content":"{\"matchedTags\":[\"a\"],\"newTags\":[\"b\"]}"}}]}`), nil
	})

	a, _ := New("openai", Config{APIKey: "k"})
	resp, err := NewClient(doer).Send(context.Background(), a, "tag this")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got := resp.Tags; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Tags = %v, want [a b]", got)
	}

	if captured.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", captured.Method)
	}
	if captured.URL.String() != "https://api.openai.com/v1/chat/completions" {
		t.Errorf("url = %s", captured.URL)
	}
	if captured.Header.Get("Authorization") != "Bearer k" {
		t.Errorf("Authorization = %q", captured.Header.Get("Authorization"))
	}
	if captured.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", captured.Header.Get("Content-Type"))
	}
}

func TestClientSend_ConfigErrorBeforeNetwork(t *testing.T) {
	called := false
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		called = true
		return nil, errors.New("should not happen")
	})

	a, _ := New("openai", Config{}) // no API key
	_, err := NewClient(doer).Send(context.Background(), a, "tag this")
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Send() error = %v, want *ConfigError", err)
	}
	if called {
		t.Error("config errors must surface before any network traffic")
	}
}

func TestClientSend_TransportError(t *testing.T) {
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	a, _ := New("openai", Config{APIKey: "k"})
	_, err := NewClient(doer).Send(context.Background(), a, "tag this")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Send() error = %v, want *NetworkError", err)
	}
	if netErr.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", netErr.Provider)
	}
	if !strings.Contains(netErr.Message, "connection refused") {
		t.Errorf("Message = %q", netErr.Message)
	}
}

func TestClientSend_HTTPErrorCarriesProviderMessage(t *testing.T) {
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(401, `{"error":{"message":"Incorrect API key provided"}}`), nil
	})

	a, _ := New("openai", Config{APIKey: "bad"})
	_, err := NewClient(doer).Send(context.Background(), a, "tag this")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Send() error = %v, want *NetworkError", err)
	}
	if netErr.Message != "Incorrect API key provided" {
		t.Errorf("Message = %q, want the provider-extracted message", netErr.Message)
	}
}

func TestClientSend_HTTPErrorWithoutBody(t *testing.T) {
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(500, ``), nil
	})

	a, _ := New("openai", Config{APIKey: "k"})
	_, err := NewClient(doer).Send(context.Background(), a, "tag this")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Send() error = %v, want *NetworkError", err)
	}
	if netErr.Message != genericErrorMessage {
		t.Errorf("Message = %q, want %q", netErr.Message, genericErrorMessage)
	}
}

func TestClientSend_FormatError(t *testing.T) {
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"choices":[]}`), nil
	})

	a, _ := New("openai", Config{APIKey: "k"})
	_, err := NewClient(doer).Send(context.Background(), a, "tag this")
	var fmtErr *FormatError
	if !errors.As(err, &fmtErr) {
		t.Fatalf("Send() error = %v, want *FormatError", err)
	}
}

func TestTestConnection(t *testing.T) {
	ok := doerFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"choices":[{"message":{"content":"pong"}}]}`), nil
	})
	a, _ := New("openai", Config{APIKey: "k"})

	res := TestConnection(context.Background(), a, ok)
	if !res.Success {
		t.Errorf("TestConnection = %+v, want success", res)
	}

	bad := doerFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(503, `{"error":{"message":"overloaded"}}`), nil
	})
	res = TestConnection(context.Background(), a, bad)
	if res.Success {
		t.Error("TestConnection should fail on 503")
	}
	if !strings.Contains(res.Error, "overloaded") {
		t.Errorf("Error = %q, want the provider message", res.Error)
	}
}
