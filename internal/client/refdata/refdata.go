// Package refdata looks up countries, states and universities for the
// sign-up prompt. The services are public and need no bearer token.
package refdata

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

	"github.com/dmitrijs2005/codelife/internal/common"
	"github.com/dmitrijs2005/codelife/internal/logging"
)

const (
	DefaultCountriesURL    = "https://restcountries.com"
	DefaultStatesURL       = "https://countriesnow.space"
	DefaultUniversitiesURL = "http://universities.hipolabs.com"
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

type Options struct {
	CountriesURL    string
	StatesURL       string
	UniversitiesURL string
	Timeout         time.Duration
	HTTPClient      *http.Client
	Logger          logging.Logger
}

type Client struct {
	countriesURL    string
	statesURL       string
	universitiesURL string
	http            *http.Client
	log             logging.Logger
}

type University struct {
	Name     string   `json:"name"`
	WebPages []string `json:"web_pages"`
	Domains  []string `json:"domains"`
	State    *string  `json:"state-province"`
}

func New(opts Options) *Client {
	c := &Client{
		countriesURL:    orDefault(opts.CountriesURL, DefaultCountriesURL),
		statesURL:       orDefault(opts.StatesURL, DefaultStatesURL),
		universitiesURL: orDefault(opts.UniversitiesURL, DefaultUniversitiesURL),
		http:            opts.HTTPClient,
		log:             opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: opts.Timeout}
	}
	if c.log == nil {
		c.log = logging.Discard()
	}
	c.log = c.log.With("component", "refdata")
	return c
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return strings.TrimRight(v, "/")
}

type countryDTO struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
}

// Countries returns the common country names sorted alphabetically.
func (c *Client) Countries(ctx context.Context) ([]string, error) {
	var dto []countryDTO
	if err := c.getJSON(ctx, http.MethodGet, c.countriesURL+"/v3.1/all?fields=name", nil, &dto); err != nil {
		return nil, fmt.Errorf("fetching countries: %w", err)
	}

	names := make([]string, 0, len(dto))
	for _, d := range dto {
		if d.Name.Common != "" {
			names = append(names, d.Name.Common)
		}
	}
	sort.Strings(names)
	return names, nil
}

type statesResponse struct {
	Error bool   `json:"error"`
	Msg   string `json:"msg"`
	Data  struct {
		States []struct {
			Name string `json:"name"`
		} `json:"states"`
	} `json:"data"`
}

// States returns the states or provinces of country.
func (c *Client) States(ctx context.Context, country string) ([]string, error) {
	body := map[string]string{"country": country}

	var resp statesResponse
	if err := c.getJSON(ctx, http.MethodPost, c.statesURL+"/api/v0.1/countries/states", body, &resp); err != nil {
		return nil, fmt.Errorf("fetching states of %s: %w", country, err)
	}
	if resp.Error {
		return nil, fmt.Errorf("fetching states of %s: %s", country, resp.Msg)
	}

	states := make([]string, 0, len(resp.Data.States))
	for _, s := range resp.Data.States {
		states = append(states, s.Name)
	}
	return states, nil
}

// Universities returns the universities registered for country.
func (c *Client) Universities(ctx context.Context, country string) ([]University, error) {
	u := c.universitiesURL + "/search?country=" + url.QueryEscape(country)

	var out []University
	if err := c.getJSON(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, fmt.Errorf("fetching universities of %s: %w", country, err)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, method, u string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", common.ContentTypeJSON)
	if body != nil {
		req.Header.Set(common.ContentTypeHeaderName, common.ContentTypeJSON)
	}

	c.log.Debug(ctx, "reference lookup", "method", method, "url", u)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
