/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package optionset

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/google/eventpivot/core/response"
	"github.com/google/eventpivot/logger"
)

// Source provides option sets by id. Both Store and Cache are sources.
type Source interface {
	Get(ctx context.Context, id string) (*OptionSet, error)
}

// Resolver looks up the option names of response headers.
type Resolver struct {
	source Source
	// Limit bounds the number of concurrent lookups. Zero means no limit.
	Limit int
}

// NewResolver creates a resolver reading from source.
func NewResolver(source Source) *Resolver {
	return &Resolver{source: source}
}

// Resolve fetches every option set referenced by headers, one lookup per
// set, and returns the merged names keyed by header name plus option code.
// Unknown sets are skipped. Cancelling ctx aborts the outstanding lookups.
func (r *Resolver) Resolve(ctx context.Context, headers []*response.Header) (map[string]string, error) {
	log := logger.GetLogger("optionset")

	// set id -> names of the headers using it
	users := make(map[string][]string)
	var ids []string
	for _, h := range headers {
		for _, id := range h.OptionSet {
			if _, ok := users[id]; !ok {
				ids = append(ids, id)
			}
			users[id] = append(users[id], h.Name)
		}
	}

	names := make(map[string]string)
	if len(ids) == 0 {
		return names, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	if r.Limit > 0 {
		g.SetLimit(r.Limit)
	}
	for _, id := range ids {
		id := id
		g.Go(func() error {
			set, err := r.source.Get(gctx, id)
			if errors.Is(err, ErrNotFound) {
				log.WithField("option_set", id).Warn("option set not found")
				return nil
			}
			if err != nil {
				return fmt.Errorf("option set %s: %w", id, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, header := range users[id] {
				for _, o := range set.Options {
					names[header+o.Code] = o.Name
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.WithField("option_sets", len(ids)).Debug("option names resolved")
	return names, nil
}

// Apply resolves the option names of x and stores them in its metadata.
func (r *Resolver) Apply(ctx context.Context, x *response.Extended) error {
	names, err := r.Resolve(ctx, x.Headers)
	if err != nil {
		return err
	}
	if x.MetaData.OptionNames == nil {
		x.MetaData.OptionNames = make(map[string]string, len(names))
	}
	for k, v := range names {
		x.MetaData.OptionNames[k] = v
	}
	return nil
}
