package domain

// CopyPlan 描述单个镜像文件的转换结果（只描述 src/dst，复制由 convert 执行）。
type CopyPlan struct {
	Src string
	Dst string

	Key    string // 查询键（游戏目录名）
	Record GameRecord
	Region string // 例如 "(USA)"
	Slot   string // 例如 "" 或 ".1"
	Size   int64
}
