// Package api provides the HTTP handlers for the admin and health
// endpoints. The workflow itself runs on a cron cadence; these endpoints
// exist for operators to trigger and inspect it out of band.
package api
