package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/theirongolddev/echolon/internal/model"
)

func TestSheetCSVURL(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{
			"edit link with fragment gid",
			"https://docs.google.com/spreadsheets/d/abc123/edit#gid=42",
			"https://docs.google.com/spreadsheets/d/abc123/export?format=csv&gid=42",
		},
		{
			"share link defaults gid",
			"https://docs.google.com/spreadsheets/d/abc123/edit?usp=sharing",
			"https://docs.google.com/spreadsheets/d/abc123/export?format=csv&gid=0",
		},
		{
			"export link unchanged",
			"https://docs.google.com/spreadsheets/d/abc123/export?format=csv",
			"https://docs.google.com/spreadsheets/d/abc123/export?format=csv",
		},
		{
			"other host unchanged",
			"https://example.com/data.csv",
			"https://example.com/data.csv",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SheetCSVURL(tt.in); got != tt.want {
				t.Errorf("SheetCSVURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFetchSheet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Date,Sales\n2024-01-01,100\n2024-01-02,200\n"))
	}))
	defer srv.Close()

	res := NewFetcher().FetchSheet(context.Background(), srv.URL+"/sheet.csv")
	if res.Err != nil {
		t.Fatalf("FetchSheet: %v", res.Err)
	}
	if got := res.Table.Sum(model.FieldRevenue); got != 300 {
		t.Errorf("revenue = %v, want 300", got)
	}
}

func TestFetchAPI(t *testing.T) {
	tests := []struct {
		name string
		body string
		rows int
	}{
		{"bare array", `[{"date":"2024-01-01","revenue":10,"churn":"5%"},{"date":"2024-01-02","revenue":20}]`, 2},
		{"wrapped under data", `{"data":[{"revenue":1.5,"active":true}]}`, 1},
		{"wrapped under records", `{"meta":{},"records":[{"revenue":"7"}]}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res := NewFetcher().FetchAPI(context.Background(), srv.URL)
			if res.Err != nil {
				t.Fatalf("FetchAPI: %v", res.Err)
			}
			if res.Table.Len() != tt.rows {
				t.Errorf("rows = %d, want %d", res.Table.Len(), tt.rows)
			}
			if !res.Table.Has(model.FieldRevenue) {
				t.Error("revenue column not mapped")
			}
		})
	}
}

func TestFetchAPI_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()
		if res := NewFetcher().FetchAPI(context.Background(), srv.URL); res.Err == nil {
			t.Error("expected error for 502")
		}
	})

	t.Run("shape", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"total": 3}`))
		}))
		defer srv.Close()
		res := NewFetcher().FetchAPI(context.Background(), srv.URL)
		if !errors.Is(res.Err, ErrUnexpectedShape) {
			t.Errorf("Err = %v, want ErrUnexpectedShape", res.Err)
		}
	})

	t.Run("body cap", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"revenue":1},{"revenue":2}]`))
		}))
		defer srv.Close()
		f := NewFetcher()
		f.maxBytes = 8
		if res := f.FetchAPI(context.Background(), srv.URL); res.Err == nil {
			t.Error("expected error for oversized body")
		}
	})

	t.Run("bad scheme", func(t *testing.T) {
		if res := NewFetcher().FetchAPI(context.Background(), "ftp://x"); res.Err == nil {
			t.Error("expected error for ftp url")
		}
	})
}
