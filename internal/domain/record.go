package domain

// GameRecord 是参考数据集中的一行（只读值，调用方拿到后不再修改）。
//
// Language 不参与命名，仅为保持记录完整。
type GameRecord struct {
	Code     Code
	Title    string
	Language string
}
