// Copyright 2026 The Frame Router Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/relaysat/framerouter/pkg/log"
	"github.com/relaysat/framerouter/pkg/serrors"
	"github.com/relaysat/framerouter/private/app/launcher"
	"github.com/relaysat/framerouter/router"
	"github.com/relaysat/framerouter/router/statuspage"
)

var globalCfg router.Config

func main() {
	application := launcher.Application{
		TOMLConfig: &globalCfg,
		ShortName:  "Frame Router",
		Main:       realMain,
	}
	application.Run()
}

func realMain(ctx context.Context) error {
	g, errCtx := errgroup.WithContext(ctx)

	reg := prometheus.NewRegistry()
	metrics := router.NewMetrics(reg)
	core := router.NewCore(&globalCfg, log.Root(), metrics)

	if err := core.Start(); err != nil {
		return serrors.Wrap("starting router core", err)
	}
	g.Go(func() error {
		defer log.HandlePanic()
		<-errCtx.Done()
		core.Stop()
		return nil
	})

	if globalCfg.API.Addr != "" {
		handler := statuspage.New(globalCfg.General.ID, &globalCfg, reg)
		server := &http.Server{Addr: globalCfg.API.Addr, Handler: handler}
		g.Go(func() error {
			defer log.HandlePanic()
			<-errCtx.Done()
			return server.Close()
		})
		g.Go(func() error {
			defer log.HandlePanic()
			log.Info("exposing status page", "addr", globalCfg.API.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return serrors.Wrap("serving status page", err)
			}
			return nil
		})
	}

	return g.Wait()
}
