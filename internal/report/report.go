package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	influx "github.com/influxdata/influxdb/client/v2"
	"k8s.io/klog"

	"github.com/tammytan95/pilea/internal/config"
	"github.com/tammytan95/pilea/pkg/aggregate"
)

func CreateInfluxClient(secrets config.InfluxSecrets) (influx.Client, error) {
	return influx.NewHTTPClient(influx.HTTPConfig{
		Addr:     secrets.InfluxEndpoint,
		Username: secrets.InfluxUsername,
		Password: secrets.InfluxPassword,
	})
}

func CreateDatabase(influxClient influx.Client, name string) error {
	name = strings.Split(name, " ")[0]

	createCommand := fmt.Sprintf("CREATE DATABASE %s", name)

	q := influx.NewQuery(createCommand, "", "")
	response, err := influxClient.Query(q)
	if err != nil {
		return err
	}
	if response.Error() != nil {
		return response.Error()
	}
	return nil
}

// Reporter writes consolidated summary windows to influx, one point per
// window timestamped at the window's representative date. When a selected
// date is configured, the resolved window is written as an extra point
// tagged selected=true, zeroed when the date matches no window.
type Reporter struct {
	client       influx.Client
	database     string
	measurement  string
	fidelity     int
	selectedDate string
}

func NewReporter(client influx.Client, conf config.InfluxConfig, fidelity int, selectedDate string) *Reporter {
	return &Reporter{
		client:       client,
		database:     conf.Database,
		measurement:  conf.SummariesMeasurement,
		fidelity:     fidelity,
		selectedDate: selectedDate,
	}
}

func (r *Reporter) WriteSummaries(view *aggregate.View) error {
	windows := view.Windows(r.fidelity)

	bp, err := influx.NewBatchPoints(influx.BatchPointsConfig{
		Database:  r.database,
		Precision: "h",
	})
	if err != nil {
		return fmt.Errorf("Error creating batch points: %s", err.Error())
	}

	for date, window := range windows {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return fmt.Errorf("unable to parse window date: %s", err.Error())
		}

		tags := map[string]string{
			"fidelity": strconv.Itoa(r.fidelity),
		}

		fields := map[string]interface{}{
			"input":        window.Input,
			"output":       window.Output,
			"transactions": len(window.Transactions),
		}

		pt, err := influx.NewPoint(r.measurement, tags, fields, t)
		if err != nil {
			return fmt.Errorf("Error adding new point: %s", err.Error())
		}

		bp.AddPoint(pt)
	}

	if r.selectedDate != "" {
		t, err := time.Parse("2006-01-02", r.selectedDate)
		if err != nil {
			return fmt.Errorf("unable to parse selected date: %s", err.Error())
		}

		selected := aggregate.Selected(windows, r.selectedDate)

		tags := map[string]string{
			"fidelity": strconv.Itoa(r.fidelity),
			"selected": "true",
		}

		fields := map[string]interface{}{
			"input":        selected.Input,
			"output":       selected.Output,
			"transactions": len(selected.Transactions),
		}

		pt, err := influx.NewPoint(r.measurement, tags, fields, t)
		if err != nil {
			return fmt.Errorf("Error adding new point: %s", err.Error())
		}

		bp.AddPoint(pt)

		klog.Infof("Selected window %s: input %.2f output %.2f\n", r.selectedDate, selected.Input, selected.Output)
	}

	err = r.client.Write(bp)
	if err != nil {
		return fmt.Errorf("Error writing to influx: %s", err.Error())
	}

	klog.Infof("Wrote %d summary windows to influx\n", len(windows))

	return nil
}
