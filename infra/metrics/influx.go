package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/relaycoord/core/coordination"
	coremetrics "github.com/kilianp07/relaycoord/core/metrics"
	"github.com/kilianp07/relaycoord/infra/logger"
)

// InfluxSink writes study outcomes to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordStudy writes one summary point, one point per judged pair and one
// per checked breaker, all stamped with the study time.
func (s *InfluxSink) RecordStudy(res coremetrics.StudyResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := studyPoints(res)
	if err := s.writeAPI.WritePoint(ctx, points...); err != nil {
		s.log.Errorf("influx write study %s: %v", res.StudyID, err)
		return err
	}
	return nil
}

func studyPoints(res coremetrics.StudyResult) []*write.Point {
	ft := res.FaultType.String()
	p := write.NewPointWithMeasurement("study_summary").
		AddTag("study_id", res.StudyID).
		AddTag("study", res.Name).
		AddTag("fault_type", ft).
		AddField("duration_ms", round3(res.Duration.Seconds()*1000)).
		SetTime(res.Time)
	if res.Table == nil {
		return []*write.Point{p}
	}
	sum := res.Table.Summarize()
	p = p.AddTag("ordering", string(res.Table.Ordering)).
		AddField("rows", sum.Rows).
		AddField("selective", sum.Selective).
		AddField("failures", sum.Failures).
		AddField("undefined", sum.Undefined).
		AddField("overduty", sum.Overduty)
	points := []*write.Point{p}

	for _, pr := range res.Table.Pairs {
		mp := write.NewPointWithMeasurement("pair_margin").
			AddTag("study_id", res.StudyID).
			AddTag("fault_type", ft).
			AddTag("downstream", pr.Downstream).
			AddTag("upstream", pr.Upstream).
			AddTag("fault_bus", strconv.Itoa(pr.FaultBus)).
			AddTag("verdict", string(pr.Verdict)).
			AddField("current_a", round3(pr.CurrentA)).
			SetTime(res.Time)
		if pr.Margin != nil {
			mp = mp.AddField("margin_s", round3(*pr.Margin))
		}
		points = append(points, mp)
	}
	for _, b := range res.Table.Breakers {
		points = append(points, write.NewPointWithMeasurement("breaker_duty").
			AddTag("study_id", res.StudyID).
			AddTag("fault_type", ft).
			AddTag("cb", b.CB).
			AddTag("status", string(b.Status)).
			AddField("fault_ka", round3(b.FaultKA)).
			AddField("rating_ka", round3(b.RatingKA)).
			AddField("peak_ka", round3(b.PeakKA)).
			AddField("making_ka", round3(b.MakingKA)).
			SetTime(res.Time))
	}
	return points
}

// RecordFailure writes a failed analysis.
func (s *InfluxSink) RecordFailure(f coremetrics.StudyFailure) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("study_failure").
		AddTag("study_id", f.StudyID).
		AddTag("study", f.Name).
		AddTag("fault_type", f.FaultType.String()).
		AddField("error", f.Err).
		SetTime(f.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFaultDuty writes one point per determinate bus.
func (s *InfluxSink) RecordFaultDuty(rec coremetrics.FaultDutyRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var points []*write.Point
	for _, b := range rec.Buses {
		if b.Status == coordination.BusIndeterminate {
			continue
		}
		p := write.NewPointWithMeasurement("bus_fault").
			AddTag("study_id", rec.StudyID).
			AddTag("bus", b.Name).
			AddTag("case", rec.Case).
			AddTag("status", b.Status).
			AddField("ikss_ka", round3(b.Ik3KA)).
			AddField("ip_ka", round3(b.IpKA)).
			AddField("rx", round3(b.RX)).
			SetTime(rec.Time)
		if b.Status == coordination.BusOK {
			p = p.AddField("ik1_ka", round3(b.Ik1KA))
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
