// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package negotiation implements the planner, the hub of a trip negotiation.
//
// A client's REQUEST is answered by a CONFIRM and fanned out as one CALL_FOR_PROPOSALS to each configured provider
// role. The providers' PROPOSE messages are collected in a Table of Records, keyed by the trip id. As soon as each
// role contributed its offers, a Plan is created from the first offer of each role and sent to the requester as an
// INFORM.
//
// The Planner is an agent.Handler and is therefore only called from its Runtime's receive loop. Neither the
// Planner nor its Table use any locking.
package negotiation
