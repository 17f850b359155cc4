package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cwxsss/inquisition-panel/internal/accountconfig"
	"github.com/cwxsss/inquisition-panel/internal/apiclient"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/pagination"
)

const testToken = "tok_1234567890abc"

// capture: запрос, полученный mock-бэкендом.
type capture struct {
	method string
	path   string
	query  map[string]string
	body   map[string]any
	auth   string
}

// recorder хранит запросы mock-бэкенда.
type recorder struct {
	mu    sync.Mutex
	calls []capture
}

func (r *recorder) at(i int) capture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[i]
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// newTestAPI поднимает mock-бэкенд, который записывает запросы
// и отвечает заданным телом по пути.
func newTestAPI(t *testing.T, responses map[string]string) (*API, *recorder) {
	t.Helper()
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := capture{
			method: r.Method,
			path:   r.URL.Path,
			query:  map[string]string{},
			auth:   r.Header.Get("Authorization"),
		}
		for k := range r.URL.Query() {
			c.query[k] = r.URL.Query().Get(k)
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &c.body)
		}
		rec.mu.Lock()
		rec.calls = append(rec.calls, c)
		rec.mu.Unlock()

		resp, ok := responses[r.URL.Path]
		if !ok {
			resp = `{"code":200,"msg":"ok","data":null}`
		}
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(apiclient.New(server.URL, time.Second, logger)), rec
}

func TestLogin_FieldPerRole(t *testing.T) {
	tests := []struct {
		role  role.Role
		path  string
		field string
	}{
		{role.User, "/userLogin", "account"},
		{role.Admin, "/adminLogin", "username"},
		{role.ProUser, "/proUserLogin", "username"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			api, calls := newTestAPI(t, map[string]string{
				tt.path: `{"code":200,"msg":"登录成功","data":{"token":"abcdefghijklmn"}}`,
			})
			res := api.Login(context.Background(), tt.role, "who", "pw")
			if !res.OK() || res.Data.Token != "abcdefghijklmn" {
				t.Fatalf("Login = %+v", res)
			}
			c := calls.at(0)
			if c.path != tt.path || c.method != http.MethodPost {
				t.Errorf("запрос %s %s", c.method, c.path)
			}
			if c.body[tt.field] != "who" || c.body["password"] != "pw" {
				t.Errorf("тело = %v", c.body)
			}
			if c.auth != "" {
				t.Error("вход не должен передавать Authorization")
			}
		})
	}
}

func TestShowAccounts_Filters(t *testing.T) {
	api, calls := newTestAPI(t, map[string]string{
		"/showAccount": `{"code":200,"msg":"","data":{"current":2,"page":3,"total":25,"records":[{"id":1,"name":"a"}]}}`,
	})
	res := api.ShowAccounts(context.Background(), testToken,
		pagination.Params{Current: 2, Size: 10},
		AccountFilter{TaskType: "daily", Freeze: "all", Expired: "", Deleted: "1"})

	if !res.OK() || res.Data.Pages != 3 || len(res.Data.Records) != 1 {
		t.Fatalf("ShowAccounts = %+v", res)
	}
	q := calls.at(0).query
	if q["current"] != "2" || q["size"] != "10" || q["taskType"] != "daily" || q["deleted"] != "1" {
		t.Errorf("query = %v", q)
	}
	if _, ok := q["freeze"]; ok {
		t.Error("фильтр all не должен передаваться")
	}
	if _, ok := q["expired"]; ok {
		t.Error("пустой фильтр не должен передаваться")
	}
	if calls.at(0).auth != "Bearer "+testToken {
		t.Errorf("Authorization = %q", calls.at(0).auth)
	}
}

func TestUpdatePayloadDefaults(t *testing.T) {
	in := map[string]any{"name": "x", "config": accountconfig.Tree{"daily": map[string]any{}}, "notice": nil}
	out := UpdatePayloadDefaults(in)

	if _, ok := out["active"].(map[string]any); !ok {
		t.Errorf("active = %#v, ожидается {}", out["active"])
	}
	if _, ok := out["notice"].(map[string]any); !ok {
		t.Errorf("notice = %#v, ожидается {}", out["notice"])
	}
	if _, ok := out["config"].(accountconfig.Tree); !ok {
		t.Errorf("заданный config заменён: %#v", out["config"])
	}
	if _, ok := in["active"]; ok {
		t.Error("исходная map изменена")
	}
}

func TestStartCooledDown(t *testing.T) {
	t.Run("успех", func(t *testing.T) {
		api, calls := newTestAPI(t, nil)
		res := api.StartCooledDown(context.Background(), testToken, 7)
		if !res.OK() {
			t.Fatalf("StartCooledDown = %+v", res)
		}
		if calls.len() != 2 {
			t.Fatalf("вызовов %d, ожидается 2", calls.len())
		}
		first, second := calls.at(0), calls.at(1)
		if first.path != "/updateAccount" || first.body["freeze"] != float64(0) || first.body["id"] != float64(7) {
			t.Errorf("первый вызов = %+v", first)
		}
		if _, ok := first.body["config"]; ok {
			t.Error("снятие заморозки не должно передавать config")
		}
		if second.path != "/startAccountByAdmin" {
			t.Errorf("второй вызов = %s", second.path)
		}
	})

	t.Run("ошибка разморозки", func(t *testing.T) {
		api, calls := newTestAPI(t, map[string]string{
			"/updateAccount": `{"code":500,"msg":"账号不存在","data":null}`,
		})
		res := api.StartCooledDown(context.Background(), testToken, 7)
		if res.OK() || res.Msg != "账号不存在" {
			t.Errorf("StartCooledDown = %+v", res)
		}
		if calls.len() != 1 {
			t.Errorf("после ошибки вызовов %d, ожидается 1", calls.len())
		}
	})
}

func TestLoadedDevices(t *testing.T) {
	api, _ := newTestAPI(t, map[string]string{
		"/showLoadedDevice": `{"code":200,"msg":"","data":{"loadDeviceList":[
			{"isChinac":"0","expireTime":"null","id":"3","region":"null","deviceName":"d","deviceToken":"t","status":"1"}]}}`,
	})
	res := api.LoadedDevices(context.Background(), testToken)
	if !res.OK() || len(res.Data) != 1 {
		t.Fatalf("LoadedDevices = %+v", res)
	}
	if d := res.Data[0]; d.ID != 3 || d.Region != nil || d.ExpireTime != nil {
		t.Errorf("устройство = %+v", d)
	}
}

func TestMySan(t *testing.T) {
	tests := []struct {
		name string
		resp string
		want string
	}{
		{"строка", `{"code":200,"msg":"","data":"120/135"}`, "120/135"},
		{"число", `{"code":200,"msg":"","data":87}`, "87"},
		{"ошибка", `{"code":500,"msg":"x","data":null}`, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, _ := newTestAPI(t, map[string]string{"/showMySan": tt.resp})
			if got := api.MySan(context.Background(), testToken); got != tt.want {
				t.Errorf("MySan = %q, ожидается %q", got, tt.want)
			}
		})
	}
}

func TestSubUsers_Query(t *testing.T) {
	api, calls := newTestAPI(t, nil)
	api.SubUsers(context.Background(), testToken, "bogus", pagination.Params{Current: 1, Size: 10}, "")
	api.SubUsers(context.Background(), testToken, "frozen", pagination.Params{Current: 2, Size: 10}, "abc")

	if q := calls.at(0).query; q["type"] != "all" || q["keyword"] != "" {
		t.Errorf("query = %v", q)
	}
	if q := calls.at(1).query; q["type"] != "frozen" || q["keyword"] != "abc" || q["current"] != "2" {
		t.Errorf("query = %v", q)
	}
}

func TestCreateSubUser(t *testing.T) {
	api, calls := newTestAPI(t, nil)
	api.CreateSubUser(context.Background(), testToken, 42, model.SubUserInput{Name: "n", Account: "a", Password: "p"})
	body := calls.at(0).body
	if body["agent"] != float64(42) || body["days"] != float64(model.DefaultAccountDays) {
		t.Errorf("тело = %v", body)
	}
}

func TestCreateCDK_AgentReset(t *testing.T) {
	api, calls := newTestAPI(t, nil)
	api.CreateCDK(context.Background(), testToken, model.NewCDK{Type: model.CDKRogue, Param: 30, Agent: 9, Count: 2})
	body := calls.at(0).body
	if body["agent"] != float64(0) || body["type"] != "rouge" || body["isAgent"] != false {
		t.Errorf("тело = %v", body)
	}
}

func TestLogs_Endpoint(t *testing.T) {
	api, calls := newTestAPI(t, nil)
	p := pagination.Params{Current: 1, Size: 10}
	api.Logs(context.Background(), testToken, p, "")
	api.Logs(context.Background(), testToken, p, "138")
	if calls.at(0).path != "/showLog" {
		t.Errorf("path = %s", calls.at(0).path)
	}
	if c := calls.at(1); c.path != "/searchLogByAccount" || c.query["account"] != "138" {
		t.Errorf("поиск = %+v", c)
	}
}

func TestValidatePasswordChange(t *testing.T) {
	if err := ValidatePasswordChange("a", "b", "b"); err != nil {
		t.Errorf("err = %v", err)
	}
	if err := ValidatePasswordChange("a", "b", "c"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("err = %v, ожидается ErrPasswordMismatch", err)
	}
	if err := ValidatePasswordChange("", "b", "b"); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("err = %v, ожидается ErrEmptyPassword", err)
	}
}
