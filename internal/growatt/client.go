package growatt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DefaultBaseURL is the Growatt server API endpoint.
const DefaultBaseURL = "http://server-api.growatt.com"

// The server rejects requests that don't look like they come from the
// web dashboard.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.82 Safari/537.36"

var (
	// ErrAuth indicates the server rejected the configured credentials.
	ErrAuth = errors.New("growatt: authentication failed")
	// ErrSessionExpired indicates the session cookie is no longer valid
	// and a new login is required.
	ErrSessionExpired = errors.New("growatt: session expired")
)

// Client talks to the Growatt server API. Login establishes a session
// cookie that the underlying cookie jar carries on subsequent requests.
type Client struct {
	http     *resty.Client
	username string
	password string
	logger   *zap.Logger
}

// NewClient creates a Growatt API client. The session is not established
// until Login is called.
func NewClient(baseURL, username, password string, timeout time.Duration, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("X-Requested-With", "XMLHttpRequest")

	return &Client{
		http:     httpClient,
		username: username,
		password: password,
		logger:   logger,
	}
}

type loginResponse struct {
	Result int `json:"result"`
}

// Login authenticates with the configured credentials. The resulting
// session cookie lives in the client's cookie jar until it expires
// server-side.
func (c *Client) Login(ctx context.Context) error {
	var out loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"account":      c.username,
			"password":     c.password,
			"validateCode": "",
		}).
		SetResult(&out).
		Post("/login")
	if err != nil {
		return fmt.Errorf("posting login: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("login: unexpected status %s", resp.Status())
	}
	if out.Result != 1 {
		return fmt.Errorf("%w (result=%d)", ErrAuth, out.Result)
	}

	c.logger.Info("logged in to growatt", zap.String("account", c.username))
	return nil
}

// Plant is one solar installation owned by the account.
type Plant struct {
	ID   string `json:"id"`
	Name string `json:"plantName"`
}

type plantListResponse struct {
	Pages int     `json:"pages"`
	Datas []Plant `json:"datas"`
}

// Plants lists all plants owned by the authenticated account, walking
// the server's pagination.
func (c *Client) Plants(ctx context.Context) ([]Plant, error) {
	var plants []Plant

	page, pages := 0, -1
	for page != pages {
		page++

		var out plantListResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				"currPage":  strconv.Itoa(page),
				"plantType": "-1",
				"orderType": "0",
				"plantName": "",
			}).
			SetResult(&out).
			Post("/selectPlant/getPlantList")
		if err != nil {
			return nil, fmt.Errorf("listing plants: %w", err)
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("listing plants: unexpected status %s", resp.Status())
		}
		if out.Pages <= 0 {
			// the server answers with an empty page once the session
			// cookie has lapsed
			return nil, ErrSessionExpired
		}

		pages = out.Pages
		plants = append(plants, out.Datas...)
	}

	return plants, nil
}

// Device is one inverter attached to a plant.
type Device struct {
	SN       string `json:"sn"`
	Alias    string `json:"alias"`
	TypeName string `json:"deviceTypeName"`
}

type deviceListResponse struct {
	Result int `json:"result"`
	Obj    struct {
		Pages int      `json:"pages"`
		Datas []Device `json:"datas"`
	} `json:"obj"`
}

// PlantDevices lists the devices registered to a plant.
func (c *Client) PlantDevices(ctx context.Context, plantID string) ([]Device, error) {
	var devices []Device

	page, pages := 0, -1
	for page != pages {
		page++

		var out deviceListResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				"currPage": strconv.Itoa(page),
				"plantId":  plantID,
			}).
			SetResult(&out).
			Post("/panel/getDevicesByPlantList")
		if err != nil {
			return nil, fmt.Errorf("listing devices for plant %s: %w", plantID, err)
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("listing devices for plant %s: unexpected status %s", plantID, resp.Status())
		}
		if out.Result != 1 {
			return nil, fmt.Errorf("listing devices for plant %s: %w", plantID, ErrSessionExpired)
		}
		if out.Obj.Pages <= 0 {
			break
		}

		pages = out.Obj.Pages
		devices = append(devices, out.Obj.Datas...)
	}

	return devices, nil
}

type chartSeries struct {
	Type  string                `json:"type"`
	SN    string                `json:"sn"`
	Datas map[string][]*float64 `json:"datas"`
}

type chartResponse struct {
	Result int           `json:"result"`
	Obj    []chartSeries `json:"obj"`
}

// DayChart returns the plant's AC output for one day: up to 288 watt
// values at five minute spacing from midnight. Slots the server reports
// as null come back as zero.
func (c *Client) DayChart(ctx context.Context, plantID string, date time.Time) ([]float64, error) {
	day := fmt.Sprintf("%d-%d-%d", date.Year(), int(date.Month()), date.Day())
	values, err := c.chart(ctx, "/energy/compare/getDevicesDayChart", plantID, day, "pac")
	if err != nil {
		return nil, fmt.Errorf("day chart for %s: %w", day, err)
	}
	return values, nil
}

// MonthChart returns the plant's produced energy for one month: one kWh
// value per day from the 1st.
func (c *Client) MonthChart(ctx context.Context, plantID string, month time.Time) ([]float64, error) {
	ym := fmt.Sprintf("%d-%d", month.Year(), int(month.Month()))
	values, err := c.chart(ctx, "/energy/compare/getDevicesMonthChart", plantID, ym, "energy")
	if err != nil {
		return nil, fmt.Errorf("month chart for %s: %w", ym, err)
	}
	return values, nil
}

func (c *Client) chart(ctx context.Context, path, plantID, date, series string) ([]float64, error) {
	jsonData, err := json.Marshal([]map[string]string{{
		"type":   "plant",
		"sn":     plantID,
		"params": "energy,autoEnergy",
	}})
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	var out chartResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"plantId":  plantID,
			"jsonData": string(jsonData),
			"date":     date,
		}).
		SetResult(&out).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("posting chart query: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("unexpected status %s", resp.Status())
	}
	if len(out.Obj) == 0 {
		// an expired session yields the login page instead of a chart
		// payload
		return nil, ErrSessionExpired
	}

	raw := out.Obj[0].Datas[series]
	values := make([]float64, len(raw))
	for i, v := range raw {
		if v != nil {
			values[i] = *v
		}
	}
	return values, nil
}
