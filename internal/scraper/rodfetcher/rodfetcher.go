// Package rodfetcher is the scraper's browser-automation PageFetcher,
// driving a real Chromium via go-rod/rod (stealth-patched via
// go-rod/stealth) instead of the original's undetected-chromedriver.
// Grounded on original_source/news_scraper/scraper_trading_view.py's
// login/cookie flow and its news-flow CSS selectors; go-rod/rod has no
// in-pack usage example, so the API calls below follow the library's own
// public surface (rod.New, Page.Element/Elements, proto.NetworkCookieParam)
// rather than a literal retrieved example.
package rodfetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"

	"github.com/wayming/Automated-Trading-System/internal/scraper"
)

const (
	newsFlowURL     = "https://www.tradingview.com/news-flow/"
	signInURL       = "https://www.tradingview.com/#signin"
	newsCardSel     = ".card-HY0D0owe"
	newsTitleSel    = ".title-HY0D0owe"
	articleBodySel  = ".body-KX2tCBZq"
	loggedInMarker  = ".tv-lightweight-charts"
	navigateTimeout = 15 * time.Second
)

// Fetcher drives TradingView's news flow page. It satisfies
// scraper.PageFetcher.
type Fetcher struct {
	username   string
	password   string
	cookiePath string
	logger     *zap.Logger

	browser *rod.Browser
	page    *rod.Page
}

// New creates a Fetcher. cookiePath is where session cookies are
// persisted between runs, matching the original's output/cookies.pkl.
func New(username, password, cookiePath string, logger *zap.Logger) *Fetcher {
	return &Fetcher{username: username, password: password, cookiePath: cookiePath, logger: logger}
}

// Login launches a stealth-patched browser, tries to resume a saved
// session from cookiePath, and falls back to filling in the sign-in form
// when no cookies are saved or the saved session no longer holds.
func (f *Fetcher) Login(ctx context.Context) (bool, error) {
	if f.browser == nil {
		browser := rod.New()
		if err := browser.Connect(); err != nil {
			return false, fmt.Errorf("rodfetcher: launch browser: %w", err)
		}
		f.browser = browser
	}

	page, err := stealth.Page(f.browser)
	if err != nil {
		return false, fmt.Errorf("rodfetcher: open stealth page: %w", err)
	}
	f.page = page

	if f.loadCookies() {
		if err := page.Context(ctx).Navigate(newsFlowURL); err == nil {
			page.Context(ctx).Reload()
			if f.waitLoggedIn(ctx) {
				f.logger.Info("resumed tradingview session from saved cookies")
				return true, nil
			}
		}
		f.logger.Info("saved cookies did not restore a session, logging in fresh")
	}

	return f.loginFresh(ctx)
}

func (f *Fetcher) loginFresh(ctx context.Context) (bool, error) {
	page := f.page.Context(ctx)
	if err := page.Navigate(signInURL); err != nil {
		return false, fmt.Errorf("rodfetcher: navigate to sign-in: %w", err)
	}

	emailOption, err := page.Timeout(navigateTimeout).ElementR("span", "Email")
	if err != nil {
		return false, fmt.Errorf("rodfetcher: email login option not found: %w", err)
	}
	if err := emailOption.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, fmt.Errorf("rodfetcher: click email login option: %w", err)
	}

	userInput, err := page.Timeout(navigateTimeout).Element("input[name=id_username]")
	if err != nil {
		return false, fmt.Errorf("rodfetcher: username field not found: %w", err)
	}
	if err := userInput.Input(f.username); err != nil {
		return false, fmt.Errorf("rodfetcher: fill username: %w", err)
	}

	passInput, err := page.Element("input[name=id_password]")
	if err != nil {
		return false, fmt.Errorf("rodfetcher: password field not found: %w", err)
	}
	if err := passInput.Input(f.password); err != nil {
		return false, fmt.Errorf("rodfetcher: fill password: %w", err)
	}
	if err := passInput.Type(input.Enter); err != nil {
		return false, fmt.Errorf("rodfetcher: submit login form: %w", err)
	}

	if !f.waitLoggedIn(ctx) {
		return false, nil
	}

	f.saveCookies()
	f.logger.Info("logged in to tradingview")
	return true, nil
}

func (f *Fetcher) waitLoggedIn(ctx context.Context) bool {
	_, err := f.page.Context(ctx).Timeout(navigateTimeout).Element(loggedInMarker)
	return err == nil
}

func (f *Fetcher) loadCookies() bool {
	data, err := os.ReadFile(f.cookiePath)
	if err != nil {
		return false
	}
	var cookies []*proto.NetworkCookieParam
	if err := json.Unmarshal(data, &cookies); err != nil {
		f.logger.Error("failed to parse saved cookies", zap.Error(err))
		return false
	}
	if err := f.page.SetCookies(cookies); err != nil {
		f.logger.Error("failed to set saved cookies", zap.Error(err))
		return false
	}
	return true
}

func (f *Fetcher) saveCookies() {
	cookies, err := f.page.Cookies(nil)
	if err != nil {
		f.logger.Error("failed to read session cookies", zap.Error(err))
		return
	}

	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		})
	}

	data, err := json.Marshal(params)
	if err != nil {
		f.logger.Error("failed to encode session cookies", zap.Error(err))
		return
	}

	if err := os.MkdirAll(filepath.Dir(f.cookiePath), 0o755); err != nil {
		f.logger.Error("failed to create cookie directory", zap.Error(err))
		return
	}
	if err := os.WriteFile(f.cookiePath, data, 0o600); err != nil {
		f.logger.Error("failed to persist session cookies", zap.Error(err))
	}
}

// FetchNews visits the news-flow page and reads the body of up to limit
// articles, matching read_message's card/title selectors and its
// per-article body wait. It keeps no record of earlier fetches; dropping
// already-seen URLs is left to the scraper worker.
func (f *Fetcher) FetchNews(ctx context.Context, limit int) ([]scraper.FetchedArticle, error) {
	page := f.page.Context(ctx)
	if err := page.Navigate(newsFlowURL); err != nil {
		return nil, fmt.Errorf("rodfetcher: navigate to news flow: %w", err)
	}
	if err := page.Timeout(navigateTimeout).WaitStable(300 * time.Millisecond); err != nil {
		return nil, fmt.Errorf("rodfetcher: wait for news flow to settle: %w", err)
	}

	cards, err := page.Elements(newsCardSel)
	if err != nil {
		return nil, fmt.Errorf("rodfetcher: find news cards: %w", err)
	}

	var articles []scraper.FetchedArticle
	for _, card := range cards {
		if len(articles) >= limit {
			break
		}

		href, err := card.Attribute("href")
		if err != nil || href == nil || *href == "" {
			continue
		}

		titleEl, err := card.Element(newsTitleSel)
		title := ""
		if err == nil {
			title, _ = titleEl.Text()
		}

		content, err := f.readArticleBody(ctx, *href)
		if err != nil {
			f.logger.Error("failed to read article body", zap.String("url", *href), zap.Error(err))
			continue
		}

		articles = append(articles, scraper.FetchedArticle{URL: *href, Title: title, Content: content})
	}

	return articles, nil
}

func (f *Fetcher) readArticleBody(ctx context.Context, url string) (string, error) {
	page := f.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return "", err
	}

	body, err := page.Timeout(navigateTimeout).Element(articleBodySel)
	if err != nil {
		return "", err
	}

	text, err := body.Text()
	if err != nil {
		return "", err
	}
	return text, nil
}

// Close releases the underlying browser process.
func (f *Fetcher) Close() error {
	if f.browser == nil {
		return nil
	}
	return f.browser.Close()
}
