// Package all wires every built-in storage backend into the storage factory.
// Importing it for side effects makes the "sqlite", "postgres", "mysql" and
// "mssql" kinds available to storage.New.
package all

import (
	_ "purchaseanalytics/internal/storage/mssql"
	_ "purchaseanalytics/internal/storage/mysql"
	_ "purchaseanalytics/internal/storage/postgres"
	_ "purchaseanalytics/internal/storage/sqlite"
)
