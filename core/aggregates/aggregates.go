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

// Package aggregates provides aggregate state used for pivot table totals.
// A state is accumulated per cell group and can be combined up the header
// hierarchy, so subtotals and grand totals come from the same leaf values.
package aggregates

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is an aggregation type as carried by a layout.
type Type string

const (
	Count    Type = "COUNT"
	Average  Type = "AVERAGE"
	Sum      Type = "SUM"
	StdDev   Type = "STDDEV"
	Variance Type = "VARIANCE"
	Min      Type = "MIN"
	Max      Type = "MAX"
)

// Types lists every aggregation type in picker order.
var Types = []Type{Count, Average, Sum, StdDev, Variance, Min, Max}

// ParseType returns the aggregation type named by s, case-insensitively.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Types {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// NumericAggState stores intermediate state for numeric aggregates.
// It can derive sum, avg, stddev, variance, min, max and count.
type NumericAggState struct {
	Count int64   // Number of values
	Sum   float64 // Sum of values
	SumSq float64 // Sum of squared values (for stddev)
	Min   float64 // Minimum value
	Max   float64 // Maximum value
}

// NewNumericAggState creates a new empty numeric aggregate state.
func NewNumericAggState() *NumericAggState {
	return &NumericAggState{
		Min: math.MaxFloat64,
		Max: -math.MaxFloat64,
	}
}

// Add adds a single value to the aggregate state.
func (s *NumericAggState) Add(value float64) {
	s.Count++
	s.Sum += value
	s.SumSq += value * value
	if value < s.Min {
		s.Min = value
	}
	if value > s.Max {
		s.Max = value
	}
}

// AddString parses and adds a response value. Unparsable values are skipped
// and reported as false.
func (s *NumericAggState) AddString(value string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return false
	}
	s.Add(v)
	return true
}

// Combine merges another numeric state into this one.
func (s *NumericAggState) Combine(other *NumericAggState) {
	if other == nil || other.Count == 0 {
		return
	}
	s.Count += other.Count
	s.Sum += other.Sum
	s.SumSq += other.SumSq
	if other.Min < s.Min {
		s.Min = other.Min
	}
	if other.Max > s.Max {
		s.Max = other.Max
	}
}

// Avg returns the average (mean) of the values.
func (s *NumericAggState) Avg() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Variance returns the population variance.
func (s *NumericAggState) Variance() float64 {
	if s.Count == 0 {
		return 0
	}
	mean := s.Avg()
	// Variance = E[X²] - (E[X])²
	variance := (s.SumSq / float64(s.Count)) - (mean * mean)
	if variance < 0 {
		// Handle floating point precision issues
		variance = 0
	}
	return variance
}

// StdDev returns the population standard deviation.
func (s *NumericAggState) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// Value returns the aggregate for the given type. An empty type sums.
func (s *NumericAggState) Value(aggType Type) (float64, bool) {
	if s.Count == 0 {
		return 0, false
	}
	switch aggType {
	case Count:
		return float64(s.Count), true
	case Sum, "":
		return s.Sum, true
	case Average:
		return s.Avg(), true
	case StdDev:
		return s.StdDev(), true
	case Variance:
		return s.Variance(), true
	case Min:
		return s.Min, true
	case Max:
		return s.Max, true
	default:
		return 0, false
	}
}

// Format returns a formatted string for the given aggregate type, grouping
// digits with sep.
func (s *NumericAggState) Format(aggType Type, sep Separator) string {
	v, ok := s.Value(aggType)
	if !ok {
		return ""
	}
	return FormatNumber(v, sep)
}

// Separator is a digit group separator.
type Separator string

const (
	SeparatorSpace Separator = "SPACE"
	SeparatorComma Separator = "COMMA"
	SeparatorNone  Separator = "NONE"
)

func (sep Separator) symbol() string {
	switch sep {
	case SeparatorComma:
		return ","
	case SeparatorNone:
		return ""
	default:
		return " "
	}
}

// FormatNumber formats a float64 for display with up to two decimals,
// trimming trailing zeros and grouping integer digits in threes.
func FormatNumber(v float64, sep Separator) string {
	var formatted string
	if v == float64(int64(v)) {
		formatted = fmt.Sprintf("%d", int64(v))
	} else {
		formatted = strconv.FormatFloat(v, 'f', 2, 64)
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimSuffix(formatted, ".")
	}
	return groupDigits(formatted, sep.symbol())
}

// FormatValue formats a raw response value. Non-numeric values are
// returned unchanged.
func FormatValue(raw string, sep Separator) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	return FormatNumber(v, sep)
}

func groupDigits(s, sep string) string {
	if sep == "" {
		return s
	}
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return sign + s
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteString(".")
		b.WriteString(frac)
	}
	return sign + b.String()
}
