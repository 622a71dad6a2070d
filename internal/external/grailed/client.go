package grailed

import (
	"golang.org/x/time/rate"

	"github.com/wonny/jhlj/backend/pkg/config"
	"github.com/wonny/jhlj/backend/pkg/httputil"
	"github.com/wonny/jhlj/backend/pkg/logger"
)

// SearchQueries is the fixed query rotation for one collection cycle.
// 검색어를 넓게 잡아야 Jensen-coded 매물을 놓치지 않는다
var SearchQueries = []string{
	"leather jacket black", "biker jacket leather", "moto jacket", "cafe racer jacket",
	"celine leather jacket", "tom ford leather jacket", "ysl leather jacket",
	"saint laurent leather jacket", "rick owens leather jacket",
	"hermes leather jacket", "chrome hearts leather jacket", "prada leather jacket",
	"gucci leather jacket", "brunello cucinelli leather", "loro piana leather",
	"fendi leather jacket", "dior leather jacket", "balenciaga leather jacket",
	"berluti leather jacket", "isaia leather jacket", "brioni leather jacket",
}

// hitsPerPage is the marketplace search page size cap.
const hitsPerPage = 100

// Client handles communication with the Grailed marketplace
// ⭐ SSOT: Grailed API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient creates a new Grailed client
func NewClient(cfg *config.GrailedConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst),
	}
}
