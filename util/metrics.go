package util

import (
	"encoding/json"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
)

const metricsIdName = "metrics.id"

type MetricsId struct {
	Id     string            `json:"id"`
	Values map[string]string `json:"values,omitempty"`
}

type MetricsDir struct {
	Path string
	Id   *MetricsId
}

func WriteMetricsId(id, outPath string, values map[string]string) error {
	data, err := json.MarshalIndent(&MetricsId{Id: id, Values: values}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error encoding metrics id")
	}
	return ioutil.WriteFile(filepath.Join(outPath, metricsIdName), data, os.ModePerm)
}

func ReadMetricsId(path string) (*MetricsId, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mid := &MetricsId{}
	if err := json.Unmarshal(data, mid); err != nil {
		return nil, errors.Wrap(err, "error decoding metrics id")
	}
	if mid.Id == "" {
		return nil, errors.New("metrics id missing 'id'")
	}
	return mid, nil
}

func DiscoverMetrics(root, id string) ([]*MetricsDir, error) {
	var dirs []*MetricsDir
	err := filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() || fi.Name() != metricsIdName {
			return nil
		}
		mid, err := ReadMetricsId(path)
		if err != nil {
			return errors.Wrapf(err, "error reading [%s]", path)
		}
		if id != "" && mid.Id != id {
			logrus.Debugf("skipping [%s], id [%s] != [%s]", path, mid.Id, id)
			return nil
		}
		dirs = append(dirs, &MetricsDir{Path: filepath.Dir(path), Id: mid})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Path < dirs[j].Path })
	return dirs, nil
}
