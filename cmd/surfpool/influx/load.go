package influx

import (
	"fmt"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/openziti/surfpool"
	"github.com/openziti/surfpool/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
	"path/filepath"
	"time"
)

func init() {
	influxCmd.AddCommand(influxLoadCmd)
}

var influxLoadCmd = &cobra.Command{
	Use:   "load <metricsRoot>",
	Short: "Load pool metrics into InfluxDB",
	Args:  cobra.ExactArgs(1),
	Run:   influxLoad,
}

func influxLoad(_ *cobra.Command, args []string) {
	dirs, err := util.DiscoverMetrics(args[0], surfpool.MetricsId)
	if err != nil {
		logrus.Fatalf("error discovering metrics in [%s] (%v)", args[0], err)
	}

	authToken := ""
	if influxDbUsername != "" || influxDbPassword != "" {
		authToken = fmt.Sprintf("%s:%s", influxDbUsername, influxDbPassword)
	}
	client := influxdb2.NewClient(influxDbUrl, authToken)
	defer client.Close()
	writeApi := client.WriteAPI("", influxDbDatabase)

	for _, dir := range dirs {
		poolId := dir.Id.Values["pool"]
		for _, dataset := range surfpool.MetricsDatasets {
			path := filepath.Join(dir.Path, dataset+".csv")
			if _, err := os.Stat(path); os.IsNotExist(err) {
				continue
			}
			data, err := util.ReadSamples(path)
			if err != nil {
				logrus.Fatalf("error reading [%s] (%v)", path, err)
			}
			for ts, v := range data {
				p := influxdb2.NewPoint(dataset, nil, map[string]interface{}{"v": v}, time.Unix(0, ts)).AddTag("pool", poolId)
				writeApi.WritePoint(p)
			}
			logrus.Infof("wrote [%d] points for pool [%s] dataset [%s]", len(data), poolId, dataset)
		}
	}
	writeApi.Flush()
}
