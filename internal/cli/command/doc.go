// Package command defines the quizrally-cli commands on top of
// urfave/cli/v2.
//
// Offline commands (inspect, check, ranking, export, mirror sync) read the
// snapshot file directly and never touch a running server. They are safe
// to run against a copy of the data directory. The server command group
// talks to a live quizrally-server over its admin API.
package command
