package domain

const (
	// DEFAULT_ENVIRONMENT is the environment tag used when none is configured
	DEFAULT_ENVIRONMENT = "dev"

	// DEFAULT_RUN_GROUP is the dataset group whose lease guards the raw layer
	DEFAULT_RUN_GROUP = "survivor"

	// NATURAL_KEY_SEPARATOR joins natural key parts (ASCII unit separator)
	NATURAL_KEY_SEPARATOR = "\x1f"

	// NULL_TOKEN is the upstream spelling of a missing value
	NULL_TOKEN = "NA"
)
