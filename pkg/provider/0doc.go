// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package provider implements provider agents, spokes answering a planner's calls for proposals.
//
// A Provider quotes offers from its catalog.Quoter for each CALL_FOR_PROPOSALS and books a selected offer on ACCEPT.
package provider
