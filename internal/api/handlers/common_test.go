package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func TestRequireUserID(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid UUID", uuid.New().String(), fiber.StatusOK},
		{"missing header", "", fiber.StatusUnauthorized},
		{"malformed UUID", "not-a-uuid", fiber.StatusBadRequest},
	}

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		userID, err := requireUserID(c)
		if err != nil {
			return err
		}
		return c.SendString(userID.String())
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set(userIDHeader, tt.header)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestOptionalUserID(t *testing.T) {
	valid := uuid.New()

	tests := []struct {
		name    string
		header  string
		wantNil bool
	}{
		{"valid UUID", valid.String(), false},
		{"missing header is anonymous", "", true},
		{"malformed UUID is anonymous", "garbage", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *uuid.UUID
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				got = optionalUserID(c)
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set(userIDHeader, tt.header)
			}
			if _, err := app.Test(req); err != nil {
				t.Fatalf("request failed: %v", err)
			}

			if tt.wantNil && got != nil {
				t.Errorf("got %v, want nil", got)
			}
			if !tt.wantNil && (got == nil || *got != valid) {
				t.Errorf("got %v, want %v", got, valid)
			}
		})
	}
}
