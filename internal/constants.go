package internal

const (
	// 配置目录名（位于 $HOME 下）
	ConfigDirName = ".rmdup"

	// 环境变量前缀
	EnvPrefix = "RMDUP"

	// 计算指纹时每次读取的块大小
	ChunkSize = 4096
)
