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

package zookeeper

import (
	"path"

	"github.com/go-zookeeper/zk"
	"github.com/pkg/errors"
	"github.com/symcn/tracker/pkg/directory"
	"github.com/symcn/tracker/pkg/option"
	"k8s.io/klog"
)

var (
	// DubboRootPath is the default root of the dubbo registry.
	DubboRootPath = "/dubbo"
	// ProvidersPath is the child of a service node which holds its providers.
	ProvidersPath = "providers"
)

func init() {
	directory.Register("zk", New)
}

// conn is the part of *zk.Conn a directory uses.
type conn interface {
	ChildrenW(path string) ([]string, *zk.Stat, <-chan zk.Event, error)
	ExistsW(path string) (bool, *zk.Stat, <-chan zk.Event, error)
}

// Directory finds the providers of a dubbo service under <root>/<service>/providers.
type Directory struct {
	conn  conn
	root  string
	close func()
}

// New Create a new directory client for zookeeper
func New(opt option.Directory) (directory.Client, error) {
	c, _, err := zk.Connect(opt.Address, opt.Timeout, zk.WithLogger(klogger{}))
	if err != nil {
		klog.Errorf("Get zookeeper client has an error: %v", err)
		return nil, errors.Wrap(err, "get zookeeper client")
	}

	root := opt.Root
	if root == "" {
		root = DubboRootPath
	}
	d := NewDirectory(c, root)
	d.close = c.Close
	return d, nil
}

// NewDirectory creates a directory on an established connection.
func NewDirectory(c conn, root string) *Directory {
	return &Directory{
		conn: c,
		root: root,
	}
}

// Open starts caching the providers of the service.
func (d *Directory) Open(name string) (directory.Handle, error) {
	ppath := path.Join(d.root, name, ProvidersPath)
	pcache, err := newProviderCache(d.conn, name, ppath)
	if err != nil {
		return nil, errors.Wrapf(err, "watch providers of %s", name)
	}
	return pcache, nil
}

// Stop closes the connection to zookeeper.
func (d *Directory) Stop() {
	if d.close != nil {
		d.close()
	}
}

type klogger struct{}

func (klogger) Printf(format string, args ...interface{}) {
	klog.V(2).Infof(format, args...)
}
