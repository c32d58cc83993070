package config

type SplitEngine interface {
	SplitEngineConfig()
}

var _ SplitEngine = LocalSpleeter{}

type LocalSpleeter struct {
	BinPath string
}

func (l LocalSpleeter) SplitEngineConfig() {}

var _ SplitEngine = LocalDemucs{}

type LocalDemucs struct {
	BinPath string
}

func (l LocalDemucs) SplitEngineConfig() {}

var _ SplitEngine = DockerSpleeter{}

type DockerSpleeter struct {
	Image string
}

func (d DockerSpleeter) SplitEngineConfig() {}
