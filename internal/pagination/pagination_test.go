package pagination

import (
	"errors"
	"net/url"
	"reflect"
	"testing"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// TestSlice_23by10: 23 записи по 10 дают три страницы, на третьей три записи.
func TestSlice_23by10(t *testing.T) {
	items := seq(23)

	if got := TotalPages(len(items), 10); got != 3 {
		t.Fatalf("TotalPages(23, 10) = %d, ожидается 3", got)
	}

	p1 := Slice(items, 1, 10)
	if !reflect.DeepEqual(p1, seq(10)) {
		t.Errorf("страница 1 = %v", p1)
	}

	p3 := Slice(items, 3, 10)
	if !reflect.DeepEqual(p3, []int{20, 21, 22}) {
		t.Errorf("страница 3 = %v, ожидается [20 21 22]", p3)
	}

	if got := Slice(items, 4, 10); len(got) != 0 {
		t.Errorf("страница 4 = %v, ожидается пусто", got)
	}
	if got := Slice(items, 0, 10); got != nil {
		t.Errorf("страница 0 = %v, ожидается nil", got)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{100, 10, 10},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.n, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, ожидается %d", tt.n, tt.size, got, tt.want)
		}
	}
}

func TestPaginate_EmptyListHasOnePage(t *testing.T) {
	p := Paginate([]int{}, 1, 10)
	if p.Pages != 1 || p.Total != 0 || len(p.Records) != 0 {
		t.Fatalf("Paginate(пусто) = %+v, ожидается одна пустая страница", p)
	}
	if n, err := ParseGoToPage("1", p.Pages); err != nil || n != 1 {
		t.Errorf("ParseGoToPage(\"1\", %d) = %d, %v; ожидается 1 без ошибки", p.Pages, n, err)
	}
	if _, err := ParseGoToPage("2", p.Pages); err == nil {
		t.Error("страница 2 пустого списка должна отклоняться")
	}
}

func TestPaginate(t *testing.T) {
	p := Paginate([]string{"a", "b", "c"}, 2, 2)
	if p.Current != 2 || p.Pages != 2 || p.Total != 3 {
		t.Errorf("Paginate = %+v", p)
	}
	if !reflect.DeepEqual(p.Records, []string{"c"}) {
		t.Errorf("Records = %v", p.Records)
	}
	if !p.HasPrev() || p.HasNext() {
		t.Errorf("HasPrev/HasNext = %v/%v", p.HasPrev(), p.HasNext())
	}
}

// TestParseGoToPage: при 5 страницах "0", "6", "abc", "" отклоняются, "3" принимается.
func TestParseGoToPage(t *testing.T) {
	for _, in := range []string{"0", "6", "abc", "", "  ", "-1", "3abc", "NaN"} {
		t.Run("reject_"+in, func(t *testing.T) {
			_, err := ParseGoToPage(in, 5)
			if !errors.Is(err, ErrInvalidPage) {
				t.Errorf("ParseGoToPage(%q, 5) = %v, ожидается ErrInvalidPage", in, err)
			}
		})
	}

	got, err := ParseGoToPage("3", 5)
	if err != nil || got != 3 {
		t.Errorf("ParseGoToPage(\"3\", 5) = (%d, %v), ожидается (3, nil)", got, err)
	}
	got, err = ParseGoToPage(" 5 ", 5)
	if err != nil || got != 5 {
		t.Errorf("ParseGoToPage(\" 5 \", 5) = (%d, %v), ожидается (5, nil)", got, err)
	}
}

func TestInvalidPageMessage(t *testing.T) {
	if got := InvalidPageMessage(5); got != "请输入 1 到 5 之间的有效页码。" {
		t.Errorf("InvalidPageMessage(5) = %q", got)
	}
}

func TestFromQuery(t *testing.T) {
	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{1, 10}},
		{"current=3&size=20", Params{3, 20}},
		{"current=0&size=-1", Params{1, 10}},
		{"current=abc", Params{1, 10}},
		{"size=1000", Params{1, 100}},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		if got := FromQuery(q, 10); got != tt.want {
			t.Errorf("FromQuery(%q) = %+v, ожидается %+v", tt.query, got, tt.want)
		}
	}

	v := Params{Current: 2, Size: 10}.Values()
	if v.Encode() != "current=2&size=10" {
		t.Errorf("Values() = %q", v.Encode())
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		current, pages, width int
		want                  []int
	}{
		{1, 3, 5, []int{1, 2, 3}},
		{1, 10, 5, []int{1, 2, 3, 4, 5}},
		{6, 10, 5, []int{4, 5, 6, 7, 8}},
		{10, 10, 5, []int{6, 7, 8, 9, 10}},
		{1, 0, 5, nil},
	}
	for _, tt := range tests {
		if got := Window(tt.current, tt.pages, tt.width); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Window(%d, %d, %d) = %v, ожидается %v", tt.current, tt.pages, tt.width, got, tt.want)
		}
	}
}
