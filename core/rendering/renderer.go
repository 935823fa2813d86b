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

package rendering

import (
	"embed"
	"io"

	"github.com/google/safehtml/template"

	"github.com/google/eventpivot/core/views"
)

//go:embed templates/*
var templateFS embed.FS

// MessageViewModel is a user-facing message such as "no data".
type MessageViewModel struct {
	Title   string
	Message string
	Kind    string // info, warning or error
}

// TableRenderer handles rendering of pivot view models to HTML
type TableRenderer struct {
	pivotTemplate   *template.Template
	messageTemplate *template.Template
}

// NewTableRenderer creates a new table renderer
func NewTableRenderer() (*TableRenderer, error) {
	trustedFS := template.TrustedFSFromEmbed(templateFS)

	pivotTemplate, err := template.New("pivot.html").ParseFS(trustedFS, "templates/pivot.html")
	if err != nil {
		return nil, err
	}

	messageTemplate, err := template.New("message.html").ParseFS(trustedFS, "templates/message.html")
	if err != nil {
		return nil, err
	}

	return &TableRenderer{
		pivotTemplate:   pivotTemplate,
		messageTemplate: messageTemplate,
	}, nil
}

// Render renders a PivotViewModel to the provided writer
func (r *TableRenderer) Render(w io.Writer, vm *views.PivotViewModel) error {
	return r.pivotTemplate.Execute(w, vm)
}

// RenderMessage renders a MessageViewModel to the provided writer
func (r *TableRenderer) RenderMessage(w io.Writer, vm MessageViewModel) error {
	return r.messageTemplate.Execute(w, vm)
}
