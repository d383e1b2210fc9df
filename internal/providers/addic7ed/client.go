package addic7ed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://www.addic7ed.com"

// The site bans aggressive scrapers. Half a request per second keeps
// well under the observed threshold.
const defaultRequestsPerSecond = 0.5

// Body markers the site uses instead of HTTP status codes.
const (
	markerDailyLimit    = "Daily Download count exceeded"
	markerWrongPassword = "Wrong password"
)

var (
	errLoginFailed = errors.New("addic7ed: login rejected")
	errDailyLimit  = errors.New("addic7ed: daily download count exceeded")
)

// Config holds the scraper session settings.
type Config struct {
	Username          string
	Password          string
	BaseURL           string
	RequestsPerSecond float64

	// HTTPClient overrides the default client in tests. Its cookie
	// jar is replaced so the session cookie survives the login.
	HTTPClient *http.Client
}

// Client maintains one logged-in browsing session against the site.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	username   string
	password   string

	mu       sync.Mutex
	loggedIn bool
}

// NewClient validates the configuration and prepares a session. No
// request is made until the first page fetch.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("addic7ed username and password are required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	perSecond := cfg.RequestsPerSecond
	if perSecond <= 0 {
		perSecond = defaultRequestsPerSecond
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	httpClient.Jar = jar

	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
	}, nil
}

// pageError carries the HTTP status of a failed page fetch.
type pageError struct {
	path   string
	status int
}

func (e *pageError) Error() string {
	return fmt.Sprintf("addic7ed: HTTP %d for %s", e.status, e.path)
}

// login posts the credentials form. The session cookie lands in the
// jar; the site answers 200 with an error banner on bad credentials.
func (c *Client) login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn {
		return nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)
	form.Set("Submit", "Log in")
	form.Set("remember", "true")

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/dologin.php",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setBrowserHeaders(req, c.baseURL+"/login.php")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting login form: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusFound {
		return &pageError{path: "/dologin.php", status: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading login response: %w", err)
	}
	if strings.Contains(string(body), markerWrongPassword) {
		return errLoginFailed
	}

	c.loggedIn = true
	return nil
}

// EpisodePage fetches and parses the subtitle listing for one episode.
// Season and episode are 1-based; the trailing 0 requests all languages.
func (c *Client) EpisodePage(ctx context.Context, show string, season, episode int) ([]Subtitle, error) {
	path := fmt.Sprintf("/serie/%s/%d/%d/0", url.PathEscape(show), season, episode)
	return c.subtitlePage(ctx, path)
}

// MoviePage resolves a movie through the site search and parses its
// subtitle listing. Returns no subtitles when the search finds nothing.
func (c *Client) MoviePage(ctx context.Context, title string, year int) ([]Subtitle, error) {
	query := title
	if year > 0 {
		query = fmt.Sprintf("%s (%d)", title, year)
	}
	searchPath := "/search.php?search=" + url.QueryEscape(query) + "&Submit=Search"

	doc, err := c.fetchPage(ctx, searchPath)
	if err != nil {
		return nil, err
	}

	// The search either answers with the movie page directly or with
	// a result list of /movie/ links.
	if subs := parseSubtitleBlocks(doc); len(subs) > 0 {
		return subs, nil
	}
	moviePath := bestMovieLink(doc, title)
	if moviePath == "" {
		return nil, nil
	}
	return c.subtitlePage(ctx, moviePath)
}

// Download fetches one subtitle file through the session. The site
// answers downloads past the daily quota with an HTML error page.
func (c *Client) Download(ctx context.Context, downloadPath string) ([]byte, error) {
	if err := c.login(ctx); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+downloadPath, nil)
	if err != nil {
		return nil, err
	}
	c.setBrowserHeaders(req, c.baseURL+"/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", downloadPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &pageError{path: downloadPath, status: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", downloadPath, err)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		if strings.Contains(string(data), markerDailyLimit) {
			return nil, errDailyLimit
		}
		return nil, fmt.Errorf("addic7ed: HTML response for %s", downloadPath)
	}
	return data, nil
}

func (c *Client) subtitlePage(ctx context.Context, path string) ([]Subtitle, error) {
	doc, err := c.fetchPage(ctx, path)
	if err != nil {
		return nil, err
	}
	return parseSubtitleBlocks(doc), nil
}

func (c *Client) fetchPage(ctx context.Context, path string) (*pageDocument, error) {
	if err := c.login(ctx); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.setBrowserHeaders(req, c.baseURL+"/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &pageError{path: path, status: resp.StatusCode}
	}
	return parsePage(resp.Body)
}

// The site serves a blank page to clients without browser headers.
func (c *Client) setBrowserHeaders(req *http.Request, referer string) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Gecko/20100101 Firefox/128.0")
	req.Header.Set("Referer", referer)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}
