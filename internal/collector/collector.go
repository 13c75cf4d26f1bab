package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/zap"

	"github.com/neelabalan/growatt-dashboard/internal/growatt"
	"github.com/neelabalan/growatt-dashboard/internal/storage"
	"github.com/neelabalan/growatt-dashboard/pkg/models"
)

// API is the slice of the Growatt client the collector needs.
type API interface {
	Login(ctx context.Context) error
	DayChart(ctx context.Context, plantID string, date time.Time) ([]float64, error)
	MonthChart(ctx context.Context, plantID string, month time.Time) ([]float64, error)
}

// Publisher pushes the latest power reading to external consumers.
type Publisher interface {
	PublishPower(sample models.PowerSample) error
}

// Collector bridges the Growatt API and the configured sinks. One
// logical thread of control: fetch, map, write, sleep. Fetch and write
// failures skip the cycle; only startup errors are fatal to the caller.
type Collector struct {
	api       API
	sink      storage.Sink
	publisher Publisher // optional
	plantID   string
	startDate time.Time
	interval  time.Duration
	logger    *zap.Logger

	now func() time.Time
}

// New creates a collector for one plant.
func New(api API, sink storage.Sink, plantID string, startDate time.Time, interval time.Duration, logger *zap.Logger) *Collector {
	return &Collector{
		api:       api,
		sink:      sink,
		plantID:   plantID,
		startDate: startDate,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// SetPublisher attaches an optional publisher for the latest reading.
func (c *Collector) SetPublisher(p Publisher) {
	c.publisher = p
}

// CollectOnce runs a single poll cycle: today's power series plus the
// month-to-date energy value. Returned errors are per-cycle, the caller
// logs them and waits for the next tick.
func (c *Collector) CollectOnce(ctx context.Context) error {
	today := c.now()

	var errs []error
	if err := c.collectPower(ctx, today); err != nil {
		errs = append(errs, fmt.Errorf("power: %w", err))
	}
	if err := c.collectEnergy(ctx, today); err != nil {
		errs = append(errs, fmt.Errorf("energy: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Collector) collectPower(ctx context.Context, day time.Time) error {
	watts, err := c.fetchDay(ctx, day)
	if err != nil {
		return err
	}

	samples := models.ExpandDayPower(day, watts)
	if len(samples) == 0 {
		c.logger.Debug("no power readings for day", zap.Time("day", day))
		return nil
	}
	if err := c.sink.WritePower(ctx, c.plantID, samples); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	c.logger.Info("stored power samples",
		zap.String("plant_id", c.plantID),
		zap.Int("count", len(samples)))

	c.publishLatest(samples)
	return nil
}

// collectEnergy stores only the most recent day of the month chart; the
// earlier days were covered by previous cycles or the backfill.
func (c *Collector) collectEnergy(ctx context.Context, day time.Time) error {
	kwh, err := c.fetchMonth(ctx, day)
	if err != nil {
		return err
	}

	samples := models.ExpandMonthEnergy(day, kwh)
	if len(samples) == 0 {
		c.logger.Debug("no energy readings for month", zap.Time("month", day))
		return nil
	}

	latest := samples[len(samples)-1:]
	if err := c.sink.WriteEnergy(ctx, c.plantID, latest); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	c.logger.Info("stored energy sample",
		zap.String("plant_id", c.plantID),
		zap.Time("day", latest[0].Time),
		zap.Float64("kwh", latest[0].KilowattHours))
	return nil
}

// publishLatest pushes the newest reading that isn't in the future. The
// day chart always spans the full day, padded with zeros past "now".
func (c *Collector) publishLatest(samples []models.PowerSample) {
	if c.publisher == nil {
		return
	}

	now := c.now()
	latest := samples[0]
	for _, s := range samples {
		if s.Time.After(now) {
			break
		}
		latest = s
	}

	if err := c.publisher.PublishPower(latest); err != nil {
		c.logger.Warn("publishing latest power reading", zap.Error(err))
	}
}

// fetchDay queries the day chart, renewing the session once if it has
// expired since the last cycle.
func (c *Collector) fetchDay(ctx context.Context, day time.Time) ([]float64, error) {
	return c.withSession(ctx, func() ([]float64, error) {
		return c.api.DayChart(ctx, c.plantID, day)
	})
}

func (c *Collector) fetchMonth(ctx context.Context, month time.Time) ([]float64, error) {
	return c.withSession(ctx, func() ([]float64, error) {
		return c.api.MonthChart(ctx, c.plantID, month)
	})
}

func (c *Collector) withSession(ctx context.Context, fetch func() ([]float64, error)) ([]float64, error) {
	values, err := fetch()
	if !errors.Is(err, growatt.ErrSessionExpired) {
		return values, err
	}

	c.logger.Warn("session expired, logging in again")
	if err := c.api.Login(ctx); err != nil {
		return nil, fmt.Errorf("renewing session: %w", err)
	}
	return fetch()
}

// Backfill fetches the full history from the configured start date:
// the power series day by day and the energy series month by month.
// Failed days are logged and skipped so one bad response doesn't abort
// hours of backfilling; context cancellation does abort.
func (c *Collector) Backfill(ctx context.Context) error {
	start := models.Midnight(c.startDate)
	today := models.Midnight(c.now())
	if start.After(today) {
		return fmt.Errorf("start date %s is in the future", start.Format("2006-01-02"))
	}

	days := int(today.Sub(start).Hours()/24) + 1
	c.logger.Info("backfilling power series", zap.Int("days", days))

	var failed int
	for day := start; !day.After(today); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return err
		}
		watts, err := c.fetchDay(ctx, day)
		if err != nil {
			c.logger.Warn("skipping day", zap.Time("day", day), zap.Error(err))
			failed++
			continue
		}
		samples := models.ExpandDayPower(day, watts)
		if len(samples) == 0 {
			continue
		}
		if err := c.sink.WritePower(ctx, c.plantID, samples); err != nil {
			c.logger.Warn("skipping day", zap.Time("day", day), zap.Error(err))
			failed++
		}
	}

	c.logger.Info("backfilling energy series")
	for month := firstOfMonth(start); !month.After(today); month = month.AddDate(0, 1, 0) {
		if err := ctx.Err(); err != nil {
			return err
		}
		kwh, err := c.fetchMonth(ctx, month)
		if err != nil {
			c.logger.Warn("skipping month", zap.Time("month", month), zap.Error(err))
			failed++
			continue
		}
		samples := models.ExpandMonthEnergy(month, kwh)
		if len(samples) == 0 {
			continue
		}
		if err := c.sink.WriteEnergy(ctx, c.plantID, samples); err != nil {
			c.logger.Warn("skipping month", zap.Time("month", month), zap.Error(err))
			failed++
		}
	}

	if failed > 0 {
		c.logger.Warn("backfill finished with gaps", zap.Int("failed_ranges", failed))
	} else {
		c.logger.Info("backfill complete")
	}
	return nil
}

// Run schedules CollectOnce on the configured interval and blocks until
// the context is cancelled. Cycle errors are logged, never fatal.
func (c *Collector) Run(ctx context.Context) error {
	scheduler := quartz.NewStdScheduler()
	scheduler.Start(ctx)

	collectJob := job.NewFunctionJob(func(ctx context.Context) (bool, error) {
		if err := c.CollectOnce(ctx); err != nil {
			c.logger.Error("collect cycle failed", zap.Error(err))
			return false, err
		}
		return true, nil
	})

	detail := quartz.NewJobDetail(collectJob, quartz.NewJobKey("collect"))
	if err := scheduler.ScheduleJob(detail, quartz.NewSimpleTrigger(c.interval)); err != nil {
		return fmt.Errorf("scheduling collect job: %w", err)
	}

	c.logger.Info("collector running", zap.Duration("interval", c.interval))
	scheduler.Wait(ctx)
	return nil
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
