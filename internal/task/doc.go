// Package task implements the asynchronous task-processing engine: the batch
// executor that drives pending TaskProcess items through runners, the runner
// for each task type, the fixed workflow pipeline, and the periodic trigger
// that fires the pipeline on a cron cadence.
package task
