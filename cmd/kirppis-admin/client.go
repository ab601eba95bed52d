// ABOUTME: Thin HTTP client for the kirppis API
// ABOUTME: Decodes the response envelope and surfaces server failure messages

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func newClient(profile *Profile) *client {
	baseURL := profile.ServerURL
	if env := os.Getenv("KIRPPIS_URL"); env != "" {
		baseURL = env
	}
	token := profile.Token
	if env := os.Getenv("KIRPPIS_TOKEN"); env != "" {
		token = env
	}

	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// userPayload mirrors the API's user JSON shape.
type userPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type categoryPayload struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

type itemPayload struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Status   string  `json:"status"`
	SellerID string  `json:"seller_id"`
}

type sessionPayload struct {
	Token string `json:"token"`
	Data  struct {
		User userPayload `json:"user"`
	} `json:"data"`
}

// do runs a request and decodes the body into out (when non-nil). Error
// responses surface the server's message.
func (c *client) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var failure struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && failure.Message != "" {
			return fmt.Errorf("%s (status %d)", failure.Message, resp.StatusCode)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *client) health() error {
	return c.do(http.MethodGet, "/health", nil, nil)
}

func (c *client) login(email, password string) (*sessionPayload, error) {
	var session sessionPayload
	err := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *client) me() (*userPayload, error) {
	var resp struct {
		Data struct {
			User userPayload `json:"user"`
		} `json:"data"`
	}
	if err := c.do(http.MethodGet, "/api/v1/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data.User, nil
}

func (c *client) listUsers() ([]userPayload, error) {
	var resp struct {
		Data struct {
			Users []userPayload `json:"users"`
		} `json:"data"`
	}
	if err := c.do(http.MethodGet, "/api/v1/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Users, nil
}

func (c *client) deleteUser(id string) error {
	return c.do(http.MethodDelete, "/api/v1/users/"+id, nil, nil)
}

func (c *client) setUserRole(id, role string) error {
	return c.do(http.MethodPatch, "/api/v1/users/"+id+"/role", map[string]string{"role": role}, nil)
}

func (c *client) listCategories() ([]categoryPayload, error) {
	var resp struct {
		Data struct {
			Categories []categoryPayload `json:"categories"`
		} `json:"data"`
	}
	if err := c.do(http.MethodGet, "/api/v1/categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Categories, nil
}

func (c *client) createCategory(name string) (*categoryPayload, error) {
	var resp struct {
		Data struct {
			Category categoryPayload `json:"category"`
		} `json:"data"`
	}
	err := c.do(http.MethodPost, "/api/v1/categories", map[string]string{"name": name}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Data.Category, nil
}

func (c *client) deleteCategory(id string) error {
	return c.do(http.MethodDelete, "/api/v1/categories/"+id, nil, nil)
}

func (c *client) listItems() ([]itemPayload, error) {
	var resp struct {
		Data struct {
			Items []itemPayload `json:"items"`
		} `json:"data"`
	}
	if err := c.do(http.MethodGet, "/api/v1/items?limit=100", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Items, nil
}
