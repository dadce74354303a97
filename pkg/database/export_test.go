package database

var MissingTables = missingTables
