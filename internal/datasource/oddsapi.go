package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gamepredict/internal/config"
	"github.com/yourusername/gamepredict/internal/h2h"
	"github.com/yourusername/gamepredict/internal/models"
)

const (
	oddsAPISourceName     = "odds_api"
	defaultOddsAPIBaseURL = "https://api.the-odds-api.com/v4"
)

var defaultBookmakers = []string{"draftkings", "fanduel", "betmgm"}

var oddsAPISportKeys = map[h2h.Sport]string{
	h2h.SportNFL:    "americanfootball_nfl",
	h2h.SportNCAA:   "americanfootball_ncaaf",
	h2h.SportNBA:    "basketball_nba",
	h2h.SportSoccer: "soccer_epl",
}

// OddsAPIClient implements OddsProvider for The Odds API
type OddsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	regions    string
	bookmakers []string
	enabled    bool
	logger     *logrus.Entry
}

type oddsAPIOutcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point"`
}

type oddsAPIMarket struct {
	Key      string           `json:"key"`
	Outcomes []oddsAPIOutcome `json:"outcomes"`
}

type oddsAPIBookmaker struct {
	Key        string          `json:"key"`
	LastUpdate string          `json:"last_update"`
	Markets    []oddsAPIMarket `json:"markets"`
}

type oddsAPIGame struct {
	ID           string             `json:"id"`
	SportKey     string             `json:"sport_key"`
	CommenceTime string             `json:"commence_time"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	Bookmakers   []oddsAPIBookmaker `json:"bookmakers"`
}

// NewOddsAPIClient creates a new Odds API client
func NewOddsAPIClient(httpClient *RateLimitedHTTPClient, cfg config.OddsAPIConfig, logger *logrus.Logger) *OddsAPIClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOddsAPIBaseURL
	}
	regions := cfg.Regions
	if regions == "" {
		regions = "us"
	}
	books := cfg.Bookmakers
	if len(books) == 0 {
		books = defaultBookmakers
	}
	return &OddsAPIClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		regions:    regions,
		bookmakers: books,
		enabled:    cfg.Enabled && cfg.APIKey != "",
		logger:     logger.WithField("provider", oddsAPISourceName),
	}
}

// Name returns the data source name
func (c *OddsAPIClient) Name() string {
	return oddsAPISourceName
}

// Supports reports whether the sport has an Odds API key
func (c *OddsAPIClient) Supports(sport h2h.Sport) bool {
	_, ok := oddsAPISportKeys[sport]
	return ok
}

// FetchLines retrieves moneyline and totals prices in American format and converts
// them to decimal odds. Games without one of the preferred bookmakers are skipped.
func (c *OddsAPIClient) FetchLines(ctx context.Context, sport h2h.Sport) ([]models.BettingLine, error) {
	if !c.enabled {
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}
	key, ok := oddsAPISportKeys[sport]
	if !ok {
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeInvalidData, "unsupported sport "+string(sport), nil)
	}

	params := url.Values{
		"apiKey":     {c.apiKey},
		"regions":    {c.regions},
		"markets":    {"h2h,totals"},
		"oddsFormat": {"american"},
		"dateFormat": {"iso"},
	}
	endpoint := fmt.Sprintf("%s/sports/%s/odds?%s", c.baseURL, key, params.Encode())

	var games []oddsAPIGame
	if err := c.httpClient.getJSON(ctx, oddsAPISourceName, endpoint, &games); err != nil {
		return nil, err
	}

	lines := make([]models.BettingLine, 0, len(games))
	for _, g := range games {
		book := c.preferredBookmaker(g.Bookmakers)
		if book == nil {
			continue
		}
		line, err := c.convertGame(sport, g, book)
		if err != nil {
			c.logger.WithError(err).WithField("game_id", g.ID).Debug("Skipping game")
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (c *OddsAPIClient) preferredBookmaker(books []oddsAPIBookmaker) *oddsAPIBookmaker {
	for _, want := range c.bookmakers {
		for i := range books {
			if books[i].Key == want {
				return &books[i]
			}
		}
	}
	return nil
}

func (c *OddsAPIClient) convertGame(sport h2h.Sport, g oddsAPIGame, book *oddsAPIBookmaker) (models.BettingLine, error) {
	line := models.BettingLine{
		Sport:     sport,
		HomeTeam:  g.HomeTeam,
		AwayTeam:  g.AwayTeam,
		Bookmaker: book.Key,
	}
	if t, err := time.Parse(time.RFC3339, book.LastUpdate); err == nil {
		line.UpdatedAt = t
	}

	for _, market := range book.Markets {
		for _, o := range market.Outcomes {
			price, err := models.AmericanToDecimal(int64(o.Price))
			if err != nil {
				return models.BettingLine{}, fmt.Errorf("%s %s: %w", market.Key, o.Name, err)
			}
			p := price

			switch market.Key {
			case "h2h":
				switch {
				case o.Name == g.HomeTeam:
					line.HomeOdds = &p
				case o.Name == g.AwayTeam:
					line.AwayOdds = &p
				case strings.EqualFold(o.Name, "draw"):
					line.DrawOdds = &p
				}
			case "totals":
				if o.Point != nil && line.TotalLine == nil {
					total := decimal.NewFromFloat(*o.Point)
					line.TotalLine = &total
				}
				switch o.Name {
				case "Over":
					line.OverOdds = &p
				case "Under":
					line.UnderOdds = &p
				}
			}
		}
	}
	return line, nil
}
