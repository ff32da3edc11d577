package postgres

// SQL queries for processed event storage

const (
	// queryInsertProcessedEvent writes one processed event.
	// The id is derived from the source message, so a redelivered message hits
	// ON CONFLICT and affects zero rows instead of creating a duplicate.
	queryInsertProcessedEvent = `
		INSERT INTO processed_events (
			id, event_type, resource_id, task_id, action, payload, processed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`

	// querySchemaExists reports whether the processed_events table is present.
	querySchemaExists = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = 'processed_events'
		)
	`
)
