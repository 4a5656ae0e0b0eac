// Package notification turns appended circulation events into patron notices and delivers them.
//
// Notices carry the patron's locale explicitly. They are published to RabbitMQ; a Dispatcher
// bounds every delivery with a timeout, never fails the calling use-case and hands failed
// deliveries to an asynq retry queue that a worker drains.
package notification
