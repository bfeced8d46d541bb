package influx

import (
	"fmt"
	"github.com/openziti/surfpool"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"net/http"
	"net/url"
)

func init() {
	influxCleanCmd.Flags().StringVarP(&cleanPool, "pool", "p", "", "Only drop series for this pool id")
	influxCmd.AddCommand(influxCleanCmd)
}

var influxCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop pool metrics series loaded by previous runs",
	Args:  cobra.NoArgs,
	Run:   influxClean,
}
var cleanPool string

func influxClean(_ *cobra.Command, _ []string) {
	for _, dataset := range surfpool.MetricsDatasets {
		if err := influxDropSeries(dataset, cleanPool); err != nil {
			logrus.Fatalf("error dropping series [%s] (%v)", dataset, err)
		}
		logrus.Infof("dropped series [%s]", dataset)
	}
}

func dropSeriesQuery(series, pool string) string {
	if pool == "" {
		return fmt.Sprintf("DROP SERIES FROM %s", series)
	}
	return fmt.Sprintf("DROP SERIES FROM %s WHERE \"pool\" = '%s'", series, pool)
}

func influxDropSeries(series, pool string) error {
	query := url.QueryEscape(dropSeriesQuery(series, pool))
	resp, err := http.Post(fmt.Sprintf("%s/query?db=%s&q=%s", influxDbUrl, influxDbDatabase, query), "text/plain", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != 200 {
		return errors.Errorf("status(%d, %s)", resp.StatusCode, resp.Status)
	}
	return nil
}
