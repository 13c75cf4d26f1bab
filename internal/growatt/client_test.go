package growatt

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "user", "secret", 5*time.Second, zap.NewNop())
}

func TestLoginSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "user", r.PostFormValue("account"))
		assert.Equal(t, "secret", r.PostFormValue("password"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":1}`)
	})

	client := newTestClient(t, mux)
	require.NoError(t, client.Login(context.Background()))
}

func TestLoginBadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":0}`)
	})

	client := newTestClient(t, mux)
	err := client.Login(context.Background())
	require.ErrorIs(t, err, ErrAuth)
}

func TestLoginServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client := newTestClient(t, mux)
	err := client.Login(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuth)
}

func TestPlantsPaging(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/selectPlant/getPlantList", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		switch r.PostFormValue("currPage") {
		case "1":
			fmt.Fprint(w, `{"pages":2,"datas":[{"id":"123","plantName":"roof"}]}`)
		case "2":
			fmt.Fprint(w, `{"pages":2,"datas":[{"id":"456","plantName":"garage"}]}`)
		default:
			t.Errorf("unexpected page %q", r.PostFormValue("currPage"))
		}
	})

	client := newTestClient(t, mux)
	plants, err := client.Plants(context.Background())
	require.NoError(t, err)
	require.Len(t, plants, 2)
	assert.Equal(t, Plant{ID: "123", Name: "roof"}, plants[0])
	assert.Equal(t, Plant{ID: "456", Name: "garage"}, plants[1])
}

func TestPlantsSessionExpired(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/selectPlant/getPlantList", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"pages":0,"datas":[]}`)
	})

	client := newTestClient(t, mux)
	_, err := client.Plants(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestPlantDevices(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/panel/getDevicesByPlantList", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "123", r.PostFormValue("plantId"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":1,"obj":{"pages":1,"datas":[{"sn":"TLX1","alias":"inverter","deviceTypeName":"tlx"}]}}`)
	})

	client := newTestClient(t, mux)
	devices, err := client.PlantDevices(context.Background(), "123")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "TLX1", devices[0].SN)
}

func TestDayChartNullsBecomeZero(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/energy/compare/getDevicesDayChart", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "2023-1-5", r.PostFormValue("date"))
		assert.Equal(t, "123", r.PostFormValue("plantId"))
		assert.JSONEq(t,
			`[{"type":"plant","sn":"123","params":"energy,autoEnergy"}]`,
			r.PostFormValue("jsonData"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":1,"obj":[{"type":"plant","sn":"123","datas":{"pac":[null,120.5,500,null]}}]}`)
	})

	client := newTestClient(t, mux)
	values, err := client.DayChart(context.Background(), "123", time.Date(2023, 1, 5, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 120.5, 500, 0}, values)
}

func TestDayChartSessionExpired(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/energy/compare/getDevicesDayChart", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":-1,"obj":[]}`)
	})

	client := newTestClient(t, mux)
	_, err := client.DayChart(context.Background(), "123", time.Now())
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestMonthChart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/energy/compare/getDevicesMonthChart", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "2023-2", r.PostFormValue("date"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":1,"obj":[{"type":"plant","sn":"123","datas":{"energy":[1.2,3.4]}}]}`)
	})

	client := newTestClient(t, mux)
	values, err := client.MonthChart(context.Background(), "123", time.Date(2023, 2, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []float64{1.2, 3.4}, values)
}

func TestDeviceDayLogsPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/device/getTLXHistory", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "TLX1", r.PostFormValue("tlxSn"))
		assert.Equal(t, "2023-01-05", r.PostFormValue("startDate"))

		w.Header().Set("Content-Type", "application/json")
		switch r.PostFormValue("start") {
		case "0":
			fmt.Fprint(w, `{"obj":{"datas":[{"pac":500}],"start":1,"haveNext":true}}`)
		case "1":
			fmt.Fprint(w, `{"obj":{"datas":[{"pac":480}],"start":2,"haveNext":false}}`)
		default:
			t.Errorf("unexpected cursor %q", r.PostFormValue("start"))
		}
	})

	client := newTestClient(t, mux)
	logs, err := client.DeviceDayLogs(context.Background(), "TLX1",
		time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), DeviceTLX)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	// pages come back newest first and are reversed into reading order
	assert.Equal(t, 480.0, logs[0]["pac"])
	assert.Equal(t, 500.0, logs[1]["pac"])
}
