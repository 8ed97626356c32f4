package nacos

import (
	"sort"
	"strconv"

	"github.com/nacos-group/nacos-sdk-go/model"
	"github.com/symcn/tracker/pkg/types"
)

type instanceView struct {
	*types.Instance
	weight float64
}

func fromInstances(service string, instances []model.Instance) []*instanceView {
	result := make([]*instanceView, 0, len(instances))
	for _, i := range instances {
		if !i.Enable || !i.Healthy {
			continue
		}
		result = append(result, newInstanceView(service, i.Ip, i.Port, i.Weight, i.ClusterName, i.Metadata))
	}
	sortByWeight(result)
	return result
}

func fromSubscribeServices(service string, services []model.SubscribeService) []*instanceView {
	result := make([]*instanceView, 0, len(services))
	for _, s := range services {
		if !s.Enable || !s.Valid {
			continue
		}
		result = append(result, newInstanceView(service, s.Ip, s.Port, s.Weight, s.ClusterName, s.Metadata))
	}
	sortByWeight(result)
	return result
}

func newInstanceView(service, ip string, port uint64, weight float64, cluster string, metadata map[string]string) *instanceView {
	labels := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		labels[k] = v
	}
	if cluster != "" {
		labels["cluster"] = cluster
	}
	return &instanceView{
		Instance: &types.Instance{
			Service: service,
			Host:    ip,
			Port: &types.Port{
				Protocol: labels["protocol"],
				Port:     strconv.FormatUint(port, 10),
			},
			// nacos weights are usually in [0, 1], keep the resolution of two decimals.
			Weight: int(weight * 100),
			Labels: labels,
		},
		weight: weight,
	}
}

func sortByWeight(instances []*instanceView) {
	sort.SliceStable(instances, func(i, j int) bool {
		return instances[i].weight > instances[j].weight
	})
}
