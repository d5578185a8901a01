// Package names holds the per-region name datasets used to label generated
// faces. Regions without a curated dataset fall back to a small built-in one
// so callers always get usable names.
package names

import (
	"fmt"
	"math/rand"

	"github.com/mkondo/facedrill/internal/model"
	"github.com/mkondo/facedrill/internal/pick"
)

// Names returns the full dataset for the region. The returned slice is
// shared; callers must not mutate it.
func Names(region model.Region) []model.Name {
	switch region {
	case model.RegionJapan:
		return japaneseNames
	case model.RegionUSA:
		return americanNames
	case model.RegionEurope:
		return europeanNames()
	case model.RegionAsia:
		return asianNames
	default:
		return japaneseNames
	}
}

// RandomNames picks count distinct names from the region's dataset. When the
// dataset is smaller than count, the whole dataset is returned shuffled.
func RandomNames(region model.Region, count int, rnd *rand.Rand) []model.Name {
	all := Names(region)
	if count >= len(all) {
		return pick.Shuffle(rnd, all)
	}
	return pick.Sample(rnd, all, count)
}

var japaneseNames = []model.Name{
	{ID: 1, FirstName: "大翔", LastName: "佐藤", Gender: model.GenderMale},
	{ID: 2, FirstName: "翔太", LastName: "鈴木", Gender: model.GenderMale},
	{ID: 3, FirstName: "悠真", LastName: "高橋", Gender: model.GenderMale},
	{ID: 4, FirstName: "陽斗", LastName: "田中", Gender: model.GenderMale},
	{ID: 5, FirstName: "蓮", LastName: "伊藤", Gender: model.GenderMale},
	{ID: 6, FirstName: "湊", LastName: "渡辺", Gender: model.GenderMale},
	{ID: 7, FirstName: "颯真", LastName: "山本", Gender: model.GenderMale},
	{ID: 8, FirstName: "樹", LastName: "中村", Gender: model.GenderMale},
	{ID: 9, FirstName: "悠太", LastName: "小林", Gender: model.GenderMale},
	{ID: 10, FirstName: "悠", LastName: "加藤", Gender: model.GenderMale},
	{ID: 11, FirstName: "大和", LastName: "吉田", Gender: model.GenderMale},
	{ID: 12, FirstName: "達也", LastName: "山田", Gender: model.GenderMale},
	{ID: 13, FirstName: "健太", LastName: "佐々木", Gender: model.GenderMale},
	{ID: 14, FirstName: "一郎", LastName: "山口", Gender: model.GenderMale},
	{ID: 15, FirstName: "太郎", LastName: "松本", Gender: model.GenderMale},
	{ID: 16, FirstName: "直樹", LastName: "井上", Gender: model.GenderMale},
	{ID: 17, FirstName: "大輔", LastName: "木村", Gender: model.GenderMale},
	{ID: 18, FirstName: "和也", LastName: "林", Gender: model.GenderMale},
	{ID: 19, FirstName: "哲也", LastName: "斎藤", Gender: model.GenderMale},
	{ID: 20, FirstName: "拓海", LastName: "清水", Gender: model.GenderMale},
	{ID: 21, FirstName: "翔", LastName: "山崎", Gender: model.GenderMale},
	{ID: 22, FirstName: "隆", LastName: "森", Gender: model.GenderMale},
	{ID: 23, FirstName: "淳", LastName: "池田", Gender: model.GenderMale},
	{ID: 24, FirstName: "誠", LastName: "橋本", Gender: model.GenderMale},
	{ID: 25, FirstName: "優太", LastName: "阿部", Gender: model.GenderMale},
	{ID: 26, FirstName: "陽菜", LastName: "石川", Gender: model.GenderFemale},
	{ID: 27, FirstName: "結衣", LastName: "前田", Gender: model.GenderFemale},
	{ID: 28, FirstName: "さくら", LastName: "藤田", Gender: model.GenderFemale},
	{ID: 29, FirstName: "美咲", LastName: "後藤", Gender: model.GenderFemale},
	{ID: 30, FirstName: "葵", LastName: "岡田", Gender: model.GenderFemale},
	{ID: 31, FirstName: "凛", LastName: "長谷川", Gender: model.GenderFemale},
	{ID: 32, FirstName: "花子", LastName: "村上", Gender: model.GenderFemale},
	{ID: 33, FirstName: "恵子", LastName: "近藤", Gender: model.GenderFemale},
	{ID: 34, FirstName: "直美", LastName: "石井", Gender: model.GenderFemale},
	{ID: 35, FirstName: "由美", LastName: "坂本", Gender: model.GenderFemale},
	{ID: 36, FirstName: "愛", LastName: "遠藤", Gender: model.GenderFemale},
	{ID: 37, FirstName: "彩", LastName: "青木", Gender: model.GenderFemale},
	{ID: 38, FirstName: "真由美", LastName: "藤井", Gender: model.GenderFemale},
	{ID: 39, FirstName: "千尋", LastName: "西村", Gender: model.GenderFemale},
	{ID: 40, FirstName: "七海", LastName: "福田", Gender: model.GenderFemale},
	{ID: 41, FirstName: "美月", LastName: "太田", Gender: model.GenderFemale},
	{ID: 42, FirstName: "結菜", LastName: "三浦", Gender: model.GenderFemale},
	{ID: 43, FirstName: "心春", LastName: "岡本", Gender: model.GenderFemale},
	{ID: 44, FirstName: "莉子", LastName: "松田", Gender: model.GenderFemale},
	{ID: 45, FirstName: "芽依", LastName: "中島", Gender: model.GenderFemale},
	{ID: 46, FirstName: "明美", LastName: "金子", Gender: model.GenderFemale},
	{ID: 47, FirstName: "裕子", LastName: "中野", Gender: model.GenderFemale},
	{ID: 48, FirstName: "智子", LastName: "原田", Gender: model.GenderFemale},
	{ID: 49, FirstName: "桃子", LastName: "小川", Gender: model.GenderFemale},
	{ID: 50, FirstName: "春香", LastName: "竹内", Gender: model.GenderFemale},
}

var americanNames = []model.Name{
	{ID: 1, FirstName: "James", LastName: "Smith", Gender: model.GenderMale},
	{ID: 2, FirstName: "Robert", LastName: "Johnson", Gender: model.GenderMale},
	{ID: 3, FirstName: "John", LastName: "Williams", Gender: model.GenderMale},
	{ID: 4, FirstName: "Michael", LastName: "Brown", Gender: model.GenderMale},
	{ID: 5, FirstName: "William", LastName: "Jones", Gender: model.GenderMale},
	{ID: 6, FirstName: "David", LastName: "Garcia", Gender: model.GenderMale},
	{ID: 7, FirstName: "Richard", LastName: "Miller", Gender: model.GenderMale},
	{ID: 8, FirstName: "Joseph", LastName: "Davis", Gender: model.GenderMale},
	{ID: 9, FirstName: "Thomas", LastName: "Rodriguez", Gender: model.GenderMale},
	{ID: 10, FirstName: "Charles", LastName: "Martinez", Gender: model.GenderMale},
	{ID: 11, FirstName: "Christopher", LastName: "Hernandez", Gender: model.GenderMale},
	{ID: 12, FirstName: "Daniel", LastName: "Lopez", Gender: model.GenderMale},
	{ID: 13, FirstName: "Matthew", LastName: "Gonzalez", Gender: model.GenderMale},
	{ID: 14, FirstName: "Anthony", LastName: "Wilson", Gender: model.GenderMale},
	{ID: 15, FirstName: "Mark", LastName: "Anderson", Gender: model.GenderMale},
	{ID: 16, FirstName: "Donald", LastName: "Taylor", Gender: model.GenderMale},
	{ID: 17, FirstName: "Steven", LastName: "Thomas", Gender: model.GenderMale},
	{ID: 18, FirstName: "Paul", LastName: "Jackson", Gender: model.GenderMale},
	{ID: 19, FirstName: "Andrew", LastName: "White", Gender: model.GenderMale},
	{ID: 20, FirstName: "Joshua", LastName: "Harris", Gender: model.GenderMale},
	{ID: 21, FirstName: "Kenneth", LastName: "Martin", Gender: model.GenderMale},
	{ID: 22, FirstName: "Kevin", LastName: "Thompson", Gender: model.GenderMale},
	{ID: 23, FirstName: "Brian", LastName: "Moore", Gender: model.GenderMale},
	{ID: 24, FirstName: "George", LastName: "Allen", Gender: model.GenderMale},
	{ID: 25, FirstName: "Timothy", LastName: "Young", Gender: model.GenderMale},
	{ID: 26, FirstName: "Mary", LastName: "King", Gender: model.GenderFemale},
	{ID: 27, FirstName: "Patricia", LastName: "Wright", Gender: model.GenderFemale},
	{ID: 28, FirstName: "Jennifer", LastName: "Scott", Gender: model.GenderFemale},
	{ID: 29, FirstName: "Linda", LastName: "Green", Gender: model.GenderFemale},
	{ID: 30, FirstName: "Elizabeth", LastName: "Baker", Gender: model.GenderFemale},
	{ID: 31, FirstName: "Barbara", LastName: "Adams", Gender: model.GenderFemale},
	{ID: 32, FirstName: "Susan", LastName: "Nelson", Gender: model.GenderFemale},
	{ID: 33, FirstName: "Jessica", LastName: "Hill", Gender: model.GenderFemale},
	{ID: 34, FirstName: "Sarah", LastName: "Ramirez", Gender: model.GenderFemale},
	{ID: 35, FirstName: "Karen", LastName: "Campbell", Gender: model.GenderFemale},
	{ID: 36, FirstName: "Lisa", LastName: "Mitchell", Gender: model.GenderFemale},
	{ID: 37, FirstName: "Nancy", LastName: "Roberts", Gender: model.GenderFemale},
	{ID: 38, FirstName: "Betty", LastName: "Carter", Gender: model.GenderFemale},
	{ID: 39, FirstName: "Margaret", LastName: "Phillips", Gender: model.GenderFemale},
	{ID: 40, FirstName: "Sandra", LastName: "Evans", Gender: model.GenderFemale},
	{ID: 41, FirstName: "Ashley", LastName: "Turner", Gender: model.GenderFemale},
	{ID: 42, FirstName: "Kimberly", LastName: "Torres", Gender: model.GenderFemale},
	{ID: 43, FirstName: "Emily", LastName: "Parker", Gender: model.GenderFemale},
	{ID: 44, FirstName: "Donna", LastName: "Collins", Gender: model.GenderFemale},
	{ID: 45, FirstName: "Michelle", LastName: "Edwards", Gender: model.GenderFemale},
	{ID: 46, FirstName: "Carol", LastName: "Stewart", Gender: model.GenderFemale},
	{ID: 47, FirstName: "Amanda", LastName: "Flores", Gender: model.GenderFemale},
	{ID: 48, FirstName: "Melissa", LastName: "Morris", Gender: model.GenderFemale},
	{ID: 49, FirstName: "Deborah", LastName: "Nguyen", Gender: model.GenderFemale},
	{ID: 50, FirstName: "Stephanie", LastName: "Murphy", Gender: model.GenderFemale},
}

// The European dataset mixes British, French, German, Italian, Spanish and
// Nordic names. It is produced by pairing the first and last name lists
// position by position, which keeps names within the same cultural group.
var (
	europeMaleFirst = []string{
		"James", "William", "Oliver", "Harry", "George", "Thomas", "Jack", "Charlie", "Jacob", "Alfie",
		"Lucas", "Hugo", "Gabriel", "Louis", "Ethan", "Jules", "Léo", "Noah", "Raphael", "Nathan",
		"Maximilian", "Alexander", "Paul", "Leon", "Ben", "Jonas", "Elias", "Lukas", "Luca", "Finn",
		"Francesco", "Alessandro", "Lorenzo", "Andrea", "Leonardo", "Matteo", "Gabriele", "Mattia", "Tommaso", "Riccardo",
		"Antonio", "Manuel", "José", "Carlos", "David", "Juan", "Miguel", "Javier", "Daniel", "Rafael",
		"Emil", "Oscar", "Filip", "Victor", "Axel", "Anton", "Nils", "Erik", "Gustav", "Arvid",
	}
	europeFemaleFirst = []string{
		"Olivia", "Emily", "Isla", "Sophie", "Amelia", "Charlotte", "Grace", "Jessica", "Lucy", "Mia",
		"Emma", "Louise", "Jade", "Alice", "Chloé", "Lina", "Léa", "Manon", "Rose", "Anna",
		"Marie", "Maria", "Sophia", "Hannah", "Emilia", "Clara", "Lena", "Frieda", "Ida", "Mathilda",
		"Sofia", "Giulia", "Aurora", "Ginevra", "Giorgia", "Greta", "Martina", "Chiara", "Bianca", "Elena",
		"Lucía", "Sofía", "Paula", "Julia", "Daniela", "Valeria", "Alba", "Noa", "Carmen", "Vega",
		"Elsa", "Maja", "Ebba", "Ella", "Wilma", "Astrid", "Signe", "Saga", "Freja", "Ingrid",
	}
	europeLastNames = []string{
		"Smith", "Jones", "Williams", "Brown", "Taylor", "Davies", "Wilson", "Evans", "Thomas", "Johnson",
		"Martin", "Bernard", "Dubois", "Petit", "Moreau", "Simon", "Laurent", "Lefebvre", "Michel", "Garcia",
		"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer", "Wagner", "Becker", "Hoffmann", "Schulz",
		"Rossi", "Russo", "Ferrari", "Esposito", "Bianchi", "Romano", "Colombo", "Ricci", "Marino", "Greco",
		"García", "Fernández", "González", "Rodríguez", "López", "Martínez", "Sánchez", "Pérez", "Gómez", "Martín",
		"Johansson", "Andersson", "Karlsson", "Nilsson", "Eriksson", "Larsson", "Olsson", "Persson", "Svensson", "Gustafsson",
	}
)

var europeTable []model.Name

func europeanNames() []model.Name {
	if europeTable != nil {
		return europeTable
	}
	table := make([]model.Name, 0, len(europeMaleFirst)+len(europeFemaleFirst))
	id := 1
	for i, first := range europeMaleFirst {
		table = append(table, model.Name{
			ID:        id,
			FirstName: first,
			LastName:  europeLastNames[i%len(europeLastNames)],
			Gender:    model.GenderMale,
		})
		id++
	}
	for i, first := range europeFemaleFirst {
		table = append(table, model.Name{
			ID:        id,
			FirstName: first,
			LastName:  europeLastNames[i%len(europeLastNames)],
			Gender:    model.GenderFemale,
		})
		id++
	}
	europeTable = table
	return europeTable
}

// No curated Asian dataset yet; a small mixed set stands in for it.
var asianNames = []model.Name{
	{ID: 1, FirstName: "Wei", LastName: "Chen", Gender: model.GenderMale},
	{ID: 2, FirstName: "Ji-Young", LastName: "Kim", Gender: model.GenderFemale},
	{ID: 3, FirstName: "Raj", LastName: "Patel", Gender: model.GenderMale},
	{ID: 4, FirstName: "Lin", LastName: "Wang", Gender: model.GenderFemale},
	{ID: 5, FirstName: "Hikaru", LastName: "Tanaka", Gender: model.GenderMale},
	{ID: 6, FirstName: "Minh", LastName: "Nguyen", Gender: model.GenderMale},
	{ID: 7, FirstName: "Mei", LastName: "Liu", Gender: model.GenderFemale},
	{ID: 8, FirstName: "Arun", LastName: "Sharma", Gender: model.GenderMale},
	{ID: 9, FirstName: "Hana", LastName: "Park", Gender: model.GenderFemale},
	{ID: 10, FirstName: "Siti", LastName: "Rahman", Gender: model.GenderFemale},
}

// ByGender filters the region's dataset down to one gender.
func ByGender(region model.Region, gender model.Gender) []model.Name {
	var out []model.Name
	for _, n := range Names(region) {
		if n.Gender == gender {
			out = append(out, n)
		}
	}
	return out
}

// RandomName picks one name of the given gender. It errors only when the
// dataset has no entry for the gender at all.
func RandomName(region model.Region, gender model.Gender, rnd *rand.Rand) (model.Name, error) {
	candidates := ByGender(region, gender)
	if len(candidates) == 0 {
		return model.Name{}, fmt.Errorf("no %s names for region %s", gender, region)
	}
	return candidates[rnd.Intn(len(candidates))], nil
}
