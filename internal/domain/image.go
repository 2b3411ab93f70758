package domain

// ImageFile 描述一次扫描得到的存档镜像文件（只做 stat，不读内容）。
//
// 不变量：
// - AbsPath 是 clean 后的完整路径，也是全局排序键
// - Folder 是直接父目录名，即数据集查询键
type ImageFile struct {
	AbsPath string
	RelPath string // 相对扫描根目录
	Folder  string
	Name    string // 文件名（含扩展名）
	Size    int64
}
