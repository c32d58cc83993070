package config

type JobStore interface {
	JobStoreConfig()
}

var _ JobStore = ProdDynamo{}

type ProdDynamo struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

func (p ProdDynamo) JobStoreConfig() {}

var _ JobStore = LocalDynamo{}

type LocalDynamo struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Host            string
}

func (l LocalDynamo) JobStoreConfig() {}

var _ JobStore = LocalSQLite{}

type LocalSQLite struct {
	DBPath string
}

func (l LocalSQLite) JobStoreConfig() {}

// EphemeralMemory keeps jobs in process memory only. Suitable for tests and
// single process setups where job records may vanish on restart.
type EphemeralMemory struct{}

var _ JobStore = EphemeralMemory{}

func (e EphemeralMemory) JobStoreConfig() {}
