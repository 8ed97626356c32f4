/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// DefaultWeight is the weight of an instance which doesn't declare one.
const DefaultWeight = 100

// Port ...
type Port struct {
	Protocol string `json:"protocol,omitempty"`
	Port     string `json:"port,omitempty"`
}

// Instance is one provider of a service found in a directory.
// instance labels usually includes:
// 		application     name of the application which host the service itself
// 		version			version of this service instance
// 		weight			route weight of this instance
// 		timestamp		time when this instance is started
// 		pid				process id of the service instance
type Instance struct {
	Service string            `json:"service"`
	Host    string            `json:"host"`
	Port    *Port             `json:"port,omitempty"`
	Weight  int               `json:"weight"`
	Labels  map[string]string `json:"labels,omitempty"`
}

// Portoi convert port to int
func (p *Port) Portoi() int {
	port, err := strconv.Atoi(p.Port)
	if err != nil {
		return 0
	}
	return port
}

// Address returns host:port of the instance, or the bare host when no port is known.
func (i *Instance) Address() string {
	if i.Port == nil || i.Port.Port == "" {
		return i.Host
	}
	return fmt.Sprintf("%s:%s", i.Host, i.Port.Port)
}

// String ...
func (i *Instance) String() string {
	return fmt.Sprintf("%s@%s(weight=%d)", i.Service, i.Address(), i.Weight)
}

// ParseInstance decodes a provider url as it is stored by dubbo in a registry,
// e.g. dubbo%3A%2F%2F10.0.0.1%3A20880%2Fcom.foo.Greeter%3Fweight%3D50
func ParseInstance(service string, rawURL string) (*Instance, error) {
	cleanURL, err := url.QueryUnescape(rawURL)
	if err != nil {
		return nil, err
	}
	ep, err := url.Parse(cleanURL)
	if err != nil {
		return nil, err
	}
	if ep.Host == "" {
		return nil, fmt.Errorf("provider url %q has no host", cleanURL)
	}

	instance := &Instance{
		Service: service,
		Host:    ep.Hostname(),
		Port: &Port{
			Protocol: ep.Scheme,
			Port:     ep.Port(),
		},
		Weight: DefaultWeight,
		Labels: make(map[string]string),
	}

	for key, value := range ep.Query() {
		if value != nil {
			instance.Labels[key] = value[0]
		}
	}
	if w, ok := instance.Labels["weight"]; ok {
		if weight, err := strconv.Atoi(w); err == nil {
			instance.Weight = weight
		}
	}
	return instance, nil
}

// SortByWeight orders instances with the heaviest first. The sort is stable so
// that instances with the same weight keep the order the directory reported.
func SortByWeight(instances []*Instance) {
	sort.SliceStable(instances, func(i, j int) bool {
		return instances[i].Weight > instances[j].Weight
	})
}

// ToValues converts instances into the untyped values a directory handle hands out.
func ToValues(instances []*Instance) []interface{} {
	values := make([]interface{}, 0, len(instances))
	for _, i := range instances {
		values = append(values, i)
	}
	return values
}
