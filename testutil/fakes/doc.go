// Package fakes holds in-memory stand-ins for the external collaborators of the circulation
// engine: payment gateway, notifier and reservation code issuer.
package fakes
