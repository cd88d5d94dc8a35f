package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

// ErrDisabled is returned by every search when SERPAPI_KEY is not configured.
// Agents treat it as "no tools available" and answer from the model alone.
var ErrDisabled = errors.New("search disabled: SERPAPI_KEY not set")

const defaultBaseURL = "https://serpapi.com"

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient() *Client {
	return &Client{
		apiKey:  os.Getenv("SERPAPI_KEY"),
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

type NewsResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Source  string `json:"source"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
}

type FlightLeg struct {
	DepartureAirport Airport `json:"departure_airport"`
	ArrivalAirport   Airport `json:"arrival_airport"`
	Airline          string  `json:"airline"`
	FlightNumber     string  `json:"flight_number"`
	Duration         int     `json:"duration"`
}

type Airport struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Time string `json:"time"`
}

type FlightOption struct {
	Legs          []FlightLeg `json:"flights"`
	TotalDuration int         `json:"total_duration"`
	Price         int         `json:"price"`
	Type          string      `json:"type"`
}

type HotelResult struct {
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Link          string       `json:"link"`
	HotelClass    string       `json:"hotel_class"`
	OverallRating float64      `json:"overall_rating"`
	Reviews       int          `json:"reviews"`
	RatePerNight  RatePerNight `json:"rate_per_night"`
}

type RatePerNight struct {
	Lowest          string  `json:"lowest"`
	ExtractedLowest float64 `json:"extracted_lowest"`
}

type JobResult struct {
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	Location    string `json:"location"`
	Via         string `json:"via"`
	Description string `json:"description"`
}

type RecipeResult struct {
	Title   string  `json:"title"`
	Link    string  `json:"link"`
	Address string  `json:"address"`
	Type    string  `json:"type"`
	Rating  float64 `json:"rating"`
	Reviews int     `json:"reviews"`
}

type ProductResult struct {
	Title          string  `json:"title"`
	Link           string  `json:"link"`
	ProductLink    string  `json:"product_link"`
	Source         string  `json:"source"`
	Price          string  `json:"price"`
	ExtractedPrice float64 `json:"extracted_price"`
	Rating         float64 `json:"rating"`
	Reviews        int     `json:"reviews"`
}

// SearchNews looks up news articles for a query.
func (c *Client) SearchNews(ctx context.Context, query string, numResults int) ([]NewsResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("tbm", "nws")
	params.Set("num", strconv.Itoa(numResults))

	var out struct {
		NewsResults []NewsResult `json:"news_results"`
	}
	if err := c.get(ctx, params, &out); err != nil {
		return nil, err
	}
	return capResults(out.NewsResults, numResults), nil
}

// SearchFlights queries Google Flights. departure and arrival are airport
// codes, date is YYYY-MM-DD. one-way search.
func (c *Client) SearchFlights(ctx context.Context, departure, arrival, date string, numResults int) ([]FlightOption, error) {
	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", departure)
	params.Set("arrival_id", arrival)
	params.Set("outbound_date", date)
	params.Set("type", "2") // one way

	var out struct {
		BestFlights  []FlightOption `json:"best_flights"`
		OtherFlights []FlightOption `json:"other_flights"`
	}
	if err := c.get(ctx, params, &out); err != nil {
		return nil, err
	}
	return capResults(append(out.BestFlights, out.OtherFlights...), numResults), nil
}

// SearchHotels queries Google Hotels for a location. Dates are YYYY-MM-DD.
func (c *Client) SearchHotels(ctx context.Context, location, checkIn, checkOut string, numResults int) ([]HotelResult, error) {
	params := url.Values{}
	params.Set("engine", "google_hotels")
	params.Set("q", location)
	params.Set("check_in_date", checkIn)
	params.Set("check_out_date", checkOut)

	var out struct {
		Properties []HotelResult `json:"properties"`
	}
	if err := c.get(ctx, params, &out); err != nil {
		return nil, err
	}
	return capResults(out.Properties, numResults), nil
}

// SearchJobs queries Google Jobs. location may be empty.
func (c *Client) SearchJobs(ctx context.Context, query, location string, numResults int) ([]JobResult, error) {
	params := url.Values{}
	params.Set("engine", "google_jobs")
	params.Set("q", query)
	if location != "" {
		params.Set("location", location)
	}

	var out struct {
		JobsResults []JobResult `json:"jobs_results"`
	}
	if err := c.get(ctx, params, &out); err != nil {
		return nil, err
	}
	return capResults(out.JobsResults, numResults), nil
}

// SearchRecipes looks up recipes with ratings via local results.
func (c *Client) SearchRecipes(ctx context.Context, query string, numResults int) ([]RecipeResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("tbm", "lcl")
	params.Set("num", strconv.Itoa(numResults))

	var out struct {
		LocalResults []RecipeResult `json:"local_results"`
	}
	if err := c.get(ctx, params, &out); err != nil {
		return nil, err
	}
	return capResults(out.LocalResults, numResults), nil
}

// SearchProducts queries Google Shopping.
func (c *Client) SearchProducts(ctx context.Context, query string, numResults int) ([]ProductResult, error) {
	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", query)

	var out struct {
		ShoppingResults []ProductResult `json:"shopping_results"`
	}
	if err := c.get(ctx, params, &out); err != nil {
		return nil, err
	}
	return capResults(out.ShoppingResults, numResults), nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if c.apiKey == "" {
		return ErrDisabled
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("serpapi status: %s", resp.Status)
	}

	// serpapi reports engine-level failures inside the body
	var probe struct {
		Error string `json:"error"`
	}
	dec := json.NewDecoder(resp.Body)
	raw := json.RawMessage{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.Error != "" {
		return fmt.Errorf("serpapi: %s", probe.Error)
	}
	return json.Unmarshal(raw, out)
}

func capResults[T any](in []T, max int) []T {
	if max > 0 && len(in) > max {
		return in[:max]
	}
	return in
}
