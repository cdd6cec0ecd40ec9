package constants

import (
	"os"
	"strconv"
)

func GetIndexDir() string {
	path := os.Getenv("INDEX_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

func GetPort() string {
	port := os.Getenv("PORT")
	if port != "" {
		return port
	}
	return "8080"
}

// GetDynamoEndpoint returns "" when no DynamoDB is configured.
func GetDynamoEndpoint() string {
	return os.Getenv("DYNAMO_ENDPOINT")
}

func GetDynamoRegion() string {
	region := os.Getenv("DYNAMO_REGION")
	if region != "" {
		return region
	}
	return "localhost"
}

func GetDynamoTable() string {
	table := os.Getenv("DYNAMO_TABLE")
	if table != "" {
		return table
	}
	return "chordex-annotations"
}

func GetReferenceHz() float64 {
	if v, err := strconv.ParseFloat(os.Getenv("A4_HZ"), 64); err == nil && v > 0 {
		return v
	}
	return DefaultReferenceHz
}

const DefaultReferenceHz = 440.0

const SnapshotFilename = "sequences.dat"

// how long the server waits for uploads to settle before snapshotting
const SnapshotDelayMillis = 500
