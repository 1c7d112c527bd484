// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package catalog provides offers for provider agents.
//
// A provider asks its Quoter for all offers matching a destination and the trip's dates. This package contains
// built-in travel and hotel catalogs as well as the FileCatalog, loading offers from a TOML file and reloading them
// whenever this file changes.
package catalog
