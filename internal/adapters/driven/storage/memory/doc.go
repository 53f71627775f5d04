// Package memory provides in-memory implementations of the driven
// storage ports. They back single-run pipelines and tests; durable
// deployments use the sqlite package instead.
package memory
