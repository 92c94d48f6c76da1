package exitcodes

// 进程退出码
const (
	Success      = 0 // 正常结束，包括用户中断
	RuntimeError = 1 // 扫描或删除过程中的错误
	InvalidInput = 2 // 参数无效，例如无法解析的 --min-size
)
