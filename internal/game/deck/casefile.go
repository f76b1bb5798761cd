package deck

import "math/rand"

// CaseFile 一局游戏的底牌，游戏期间保密
type CaseFile struct {
	solution WhoWhatWhere
}

// NewRandomCaseFile 游戏创建时均匀随机抽取底牌
func NewRandomCaseFile(cat *Catalog, rng *rand.Rand) *CaseFile {
	return &CaseFile{solution: NewRandomWhoWhatWhere(cat, rng)}
}

// NewCaseFile 用指定三元组构造底牌，测试和回档时使用
func NewCaseFile(solution WhoWhatWhere) *CaseFile {
	return &CaseFile{solution: solution}
}

// Solution 底牌三元组。仅供结算和归档，不得透给玩家
func (f *CaseFile) Solution() WhoWhatWhere {
	return f.solution
}

// Matches 判断一次指控是否命中底牌
func (f *CaseFile) Matches(accusation WhoWhatWhere) bool {
	return f.solution.Compare(accusation)
}

// Contains 判断一张牌是否在底牌中
func (f *CaseFile) Contains(c Card) bool {
	for _, s := range f.solution.Cards() {
		if s == c {
			return true
		}
	}
	return false
}
