package growatt

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// DeviceKind selects which inverter history endpoint to query.
type DeviceKind string

const (
	DeviceTLX      DeviceKind = "tlx"
	DeviceInverter DeviceKind = "inv"
)

// DeviceLog is one raw reading row from a device's daily history. The
// key set depends on the device model, so it is kept untyped.
type DeviceLog map[string]any

type deviceLogResponse struct {
	Obj struct {
		Datas    []DeviceLog `json:"datas"`
		Start    int         `json:"start"`
		HaveNext bool        `json:"haveNext"`
	} `json:"obj"`
}

// DeviceDayLogs fetches all raw readings a device recorded on one day,
// oldest first, walking the server's cursor pagination.
func (c *Client) DeviceDayLogs(ctx context.Context, sn string, date time.Time, kind DeviceKind) ([]DeviceLog, error) {
	path, snKey := "/device/getTLXHistory", "tlxSn"
	if kind == DeviceInverter {
		path, snKey = "/device/getInverterHistor", "invSn"
	}
	day := date.Format("2006-01-02")

	var logs []DeviceLog
	start, haveNext := 0, true
	for haveNext {
		var out deviceLogResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				snKey:       sn,
				"startDate": day,
				"endDate":   day,
				"start":     strconv.Itoa(start),
			}).
			SetResult(&out).
			Post(path)
		if err != nil {
			return nil, fmt.Errorf("fetching device logs for %s: %w", sn, err)
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("fetching device logs for %s: unexpected status %s", sn, resp.Status())
		}

		logs = append(logs, out.Obj.Datas...)

		haveNext = out.Obj.HaveNext
		if haveNext && out.Obj.Start <= start {
			// cursor must advance, otherwise the server is looping us
			return nil, fmt.Errorf("fetching device logs for %s: pagination cursor stuck at %d", sn, start)
		}
		start = out.Obj.Start
	}

	// the server returns newest first
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}
