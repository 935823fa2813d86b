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

package dimension

// RelativePeriods lists the relative period codes in picker order.
var RelativePeriods = []string{
	"THIS_WEEK",
	"LAST_WEEK",
	"LAST_4_WEEKS",
	"LAST_12_WEEKS",
	"LAST_52_WEEKS",
	"THIS_MONTH",
	"LAST_MONTH",
	"LAST_3_MONTHS",
	"LAST_6_MONTHS",
	"LAST_12_MONTHS",
	"THIS_BIMONTH",
	"LAST_BIMONTH",
	"LAST_6_BIMONTHS",
	"THIS_QUARTER",
	"LAST_QUARTER",
	"LAST_4_QUARTERS",
	"THIS_SIX_MONTH",
	"LAST_SIX_MONTH",
	"LAST_2_SIXMONTHS",
	"THIS_FINANCIAL_YEAR",
	"LAST_FINANCIAL_YEAR",
	"LAST_5_FINANCIAL_YEARS",
	"THIS_YEAR",
	"LAST_YEAR",
	"LAST_5_YEARS",
}

var relativePeriodSet = func() map[string]bool {
	m := make(map[string]bool, len(RelativePeriods))
	for _, p := range RelativePeriods {
		m[p] = true
	}
	return m
}()

// IsRelativePeriod reports whether id is a relative period code rather than
// a fixed ISO period.
func IsRelativePeriod(id string) bool {
	return relativePeriodSet[id]
}

// AnyRelative reports whether ids holds a relative period code. Such a
// selection cannot be matched against the periods it expands to.
func AnyRelative(ids []string) bool {
	for _, id := range ids {
		if IsRelativePeriod(id) {
			return true
		}
	}
	return false
}
