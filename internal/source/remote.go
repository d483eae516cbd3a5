package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	fetchTimeout  = 15 * time.Second
	maxFetchBytes = 8 << 20
)

// ErrUnexpectedShape is returned when an API body is not a list of objects.
var ErrUnexpectedShape = errors.New("response is not a list of objects")

// wrapperKeys are the object keys searched for a record list, in order.
var wrapperKeys = []string{"data", "records", "rows", "items", "results"}

// Fetcher imports tables from Google Sheets and JSON REST endpoints.
type Fetcher struct {
	http     *http.Client
	maxBytes int64
}

// NewFetcher creates a Fetcher with the default timeout and body cap.
func NewFetcher() *Fetcher {
	return &Fetcher{
		http:     &http.Client{Timeout: fetchTimeout},
		maxBytes: maxFetchBytes,
	}
}

// SheetCSVURL rewrites a Google Sheets share or edit link into its CSV
// export link. Other URLs are returned unchanged.
//
//	https://docs.google.com/spreadsheets/d/ID/edit#gid=42
//	  -> https://docs.google.com/spreadsheets/d/ID/export?format=csv&gid=42
func SheetCSVURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host != "docs.google.com" {
		return raw
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	// spreadsheets/d/<id>/...
	if len(parts) < 3 || parts[0] != "spreadsheets" || parts[1] != "d" {
		return raw
	}
	if len(parts) > 3 && parts[3] == "export" {
		return raw
	}

	gid := u.Query().Get("gid")
	if gid == "" {
		frag, _ := url.ParseQuery(u.Fragment)
		gid = frag.Get("gid")
	}
	if gid == "" {
		gid = "0"
	}

	out := url.URL{
		Scheme:   "https",
		Host:     u.Host,
		Path:     "/spreadsheets/d/" + parts[2] + "/export",
		RawQuery: url.Values{"format": {"csv"}, "gid": {gid}}.Encode(),
	}
	return out.String()
}

// FetchSheet downloads a sheet as CSV and parses it.
func (f *Fetcher) FetchSheet(ctx context.Context, sheetURL string) ParseResult {
	body, err := f.get(ctx, SheetCSVURL(sheetURL), "text/csv")
	if err != nil {
		return ParseResult{Err: err}
	}
	return ParseCSV(bytes.NewReader(body), "sheet")
}

// FetchAPI downloads a JSON list of records and parses it like a CSV whose
// headers are the sorted union of record keys.
func (f *Fetcher) FetchAPI(ctx context.Context, apiURL string) ParseResult {
	body, err := f.get(ctx, apiURL, "application/json")
	if err != nil {
		return ParseResult{Err: err}
	}
	headers, rows, err := flattenJSON(body)
	if err != nil {
		return ParseResult{Err: fmt.Errorf("decoding %s: %w", apiURL, err)}
	}
	return ParseRows(headers, rows, "api")
}

func (f *Fetcher) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", "echolon")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u.Host, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", u.Host, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("fetching %s: body exceeds %d bytes", u.Host, f.maxBytes)
	}
	return body, nil
}

// flattenJSON turns a JSON array of objects (optionally wrapped in an
// object under one of wrapperKeys) into CSV-like headers and rows.
func flattenJSON(body []byte) ([]string, [][]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, nil, err
	}

	list, ok := root.([]any)
	if !ok {
		obj, isObj := root.(map[string]any)
		if !isObj {
			return nil, nil, ErrUnexpectedShape
		}
		for _, k := range wrapperKeys {
			if l, found := obj[k].([]any); found {
				list, ok = l, true
				break
			}
		}
		if !ok {
			return nil, nil, ErrUnexpectedShape
		}
	}

	objects := make([]map[string]any, 0, len(list))
	keys := make(map[string]struct{})
	for _, item := range list {
		obj, isObj := item.(map[string]any)
		if !isObj {
			return nil, nil, ErrUnexpectedShape
		}
		for k := range obj {
			keys[k] = struct{}{}
		}
		objects = append(objects, obj)
	}

	headers := make([]string, 0, len(keys))
	for k := range keys {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	rows := make([][]string, 0, len(objects))
	for _, obj := range objects {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = cellString(obj[h])
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
