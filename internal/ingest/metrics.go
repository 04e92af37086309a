package ingest

import "expvar"

var (
	uploadsTotal   = expvar.NewInt("ingest_uploads")
	rowsProcessed  = expvar.NewInt("ingest_rows_processed")
	rowsInserted   = expvar.NewInt("ingest_rows_inserted")
	rowsSkipped    = expvar.NewInt("ingest_rows_skipped")
	picturesStored = expvar.NewInt("ingest_pictures_stored")
)
