package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwxsss/inquisition-panel/internal/apiclient"
	"github.com/cwxsss/inquisition-panel/internal/backend"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/pagination"
	"github.com/cwxsss/inquisition-panel/internal/ui/auth"
)

// errIncomplete: не заполнены обязательные поля.
var errIncomplete = errors.New("请填写完整信息")

func newLoginCmd(a *app) *cobra.Command {
	var roleName, login, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Вход в 云控 и сохранение сессии",
		Long:  "Вход под ролью user, admin или prouser. Без --password пароль читается из stdin.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, ok := role.Parse(roleName)
			if !ok {
				return fmt.Errorf("%w: %q", auth.ErrInvalidRole, roleName)
			}
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errIncomplete
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if strings.TrimSpace(login) == "" || password == "" {
				return errIncomplete
			}

			res := a.api.Login(cmdContext(cmd), r, login, password)
			if err := res.Error(); err != nil {
				return err
			}
			if !auth.IsTokenValid(res.Data.Token) {
				return errors.New("бэкенд вернул пустой токен")
			}
			if err := a.session.Login(res.Data.Token, r); err != nil {
				return err
			}
			a.success("登录成功 (%s), сессия: %s", r, a.storage.Path())
			return nil
		},
	}
	cmd.Flags().StringVarP(&roleName, "role", "r", string(role.User), "роль: user, admin, prouser")
	cmd.Flags().StringVarP(&login, "login", "u", "", "аккаунт (user) или имя пользователя (admin, prouser)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "пароль")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Удалить сохранённую сессию",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			a.success("已退出登录")
			return nil
		},
	}
}

// whoamiView: вывод whoami в JSON.
type whoamiView struct {
	Role      string     `json:"role"`
	Session   string     `json:"session"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Показать текущую сессию",
		RunE: func(_ *cobra.Command, _ []string) error {
			token := a.session.Token()
			if !auth.IsTokenValid(token) {
				return ErrNotLoggedIn
			}

			v := whoamiView{Role: string(a.session.Role()), Session: a.storage.Path()}
			if info, ok := auth.InspectToken(token); ok {
				v.Subject = info.Subject
				if info.HasExpiry() {
					exp := info.ExpiresAt
					v.ExpiresAt = &exp
				}
			}
			if a.opts.jsonOutput {
				return a.emitJSON(v)
			}

			pairs := [][2]string{{"роль", v.Role}, {"сессия", v.Session}, {"токен", maskToken(token)}}
			if v.Subject != "" {
				pairs = append(pairs, [2]string{"субъект", v.Subject})
			}
			if v.ExpiresAt != nil {
				pairs = append(pairs, [2]string{"истекает", model.DisplayTime(model.FormatTime(*v.ExpiresAt))})
			}
			keyValues(a.out, pairs)
			return nil
		},
	}
}

func newAccountsCmd(a *app) *cobra.Command {
	var (
		page, size int
		keyword    string
		filter     backend.AccountFilter
	)

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Список аккаунтов (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.require(role.Admin)
			if err != nil {
				return err
			}
			p := pageParams(page, size)

			var res apiclient.Result[pagination.Page[model.Account]]
			if kw := strings.TrimSpace(keyword); kw != "" {
				res = a.api.SearchAccounts(cmdContext(cmd), token, p, kw)
			} else {
				res = a.api.ShowAccounts(cmdContext(cmd), token, p, filter)
			}
			if err := check(res); err != nil {
				return err
			}
			if a.opts.jsonOutput {
				return a.emitJSON(res.Data)
			}

			now := time.Now()
			t := newTable("ID", "名称", "账号", "服务器", "任务", "状态", "到期")
			for _, acc := range res.Data.Records {
				t.add(strconv.Itoa(acc.ID), acc.Name, acc.Account, model.ServerLabel(acc.Server),
					model.TaskTypeLabel(acc.TaskType), accountState(acc, now), model.DisplayTime(acc.ExpireTime))
			}
			t.render(a.out)
			pageFooter(a, res.Data)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&page, "page", 1, "номер страницы")
	f.IntVar(&size, "size", pagination.DefaultSize, "размер страницы")
	f.StringVar(&keyword, "keyword", "", "поиск по имени или аккаунту")
	f.StringVar(&filter.TaskType, "task-type", "", "тип задачи: daily, rogue, sand_fire")
	f.StringVar(&filter.Freeze, "freeze", "", "заморозка: 0, 1, all")
	f.StringVar(&filter.Expired, "expired", "", "истёкшие: 0, 1, all")
	f.StringVar(&filter.Deleted, "deleted", "", "удалённые: 0, 1, all")
	return cmd
}

func newLogsCmd(a *app) *cobra.Command {
	var (
		page, size int
		account    string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Журнал задач: свой (user) или всех аккаунтов (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.require(role.User, role.Admin)
			if err != nil {
				return err
			}
			p := pageParams(page, size)

			var out apiclient.Result[pagination.Page[model.LogEntry]]
			if a.session.Role() == role.Admin {
				out = a.api.Logs(cmdContext(cmd), token, p, strings.TrimSpace(account))
			} else {
				out = a.api.MyLogs(cmdContext(cmd), token, p)
			}
			if err := check(out); err != nil {
				return err
			}
			if a.opts.jsonOutput {
				return a.emitJSON(out.Data)
			}

			t := newTable("ID", "时间", "级别", "任务", "标题", "账号")
			for _, e := range out.Data.Records {
				t.add(strconv.Itoa(e.ID), model.DisplayTime(e.Time), e.Level,
					model.TaskTypeLabel(e.TaskType), e.Title, e.Account)
			}
			t.render(a.out)
			pageFooter(a, out.Data)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&page, "page", 1, "номер страницы")
	f.IntVar(&size, "size", pagination.DefaultSize, "размер страницы")
	f.StringVar(&account, "account", "", "фильтр по аккаунту (admin)")
	return cmd
}

// tasksView: вывод tasks в JSON.
type tasksView struct {
	Pending  []model.FreeTask `json:"pending"`
	Running  []model.LockTask `json:"inProgress"`
	Cooldown []model.Account  `json:"coolingDown"`
}

func newTasksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "Очередь задач: ожидание, выполнение, охлаждение (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.require(role.Admin)
			if err != nil {
				return err
			}
			c := cmdContext(cmd)

			free := a.api.FreeTasks(c, token)
			if err := check(free); err != nil {
				return err
			}
			lock := a.api.LockTasks(c, token)
			if err := check(lock); err != nil {
				return err
			}
			cool := a.api.FreezeTasks(c, token)
			if err := check(cool); err != nil {
				return err
			}

			v := tasksView{Pending: free.Data, Running: lock.Data, Cooldown: cool.Data}
			if a.opts.jsonOutput {
				return a.emitJSON(v)
			}

			section(a, model.QueuePending, len(v.Pending))
			t := newTable("ID", "名称", "账号", "任务", "代理")
			for _, ft := range v.Pending {
				t.add(strconv.Itoa(ft.ID), ft.Name, ft.Account, model.TaskTypeLabel(ft.TaskType), ft.Agent.Value)
			}
			t.render(a.out)

			section(a, model.QueueRunning, len(v.Running))
			t = newTable("设备", "ID", "名称", "账号", "到期")
			for _, lt := range v.Running {
				t.add(lt.DeviceToken, strconv.Itoa(lt.Account.ID), lt.Account.Name, lt.Account.Account,
					model.DisplayTime(lt.ExpirationTime))
			}
			t.render(a.out)

			section(a, model.QueueCooldown, len(v.Cooldown))
			t = newTable("ID", "名称", "账号", "任务")
			for _, acc := range v.Cooldown {
				t.add(strconv.Itoa(acc.ID), acc.Name, acc.Account, model.TaskTypeLabel(acc.TaskType))
			}
			t.render(a.out)
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Сводная статистика (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.require(role.Admin)
			if err != nil {
				return err
			}
			res := a.api.Statistics(cmdContext(cmd), token)
			if err := check(res); err != nil {
				return err
			}
			if a.opts.jsonOutput {
				return a.emitJSON(res.Data)
			}
			s := res.Data
			keyValues(a.out, [][2]string{
				{"新增用户", strconv.Itoa(s.NewUserNum)},
				{"付费用户", strconv.Itoa(s.PayedUserNum)},
				{"今日收入", strconv.FormatFloat(s.DayIncome, 'f', 2, 64)},
				{"本月收入", strconv.FormatFloat(s.MonthIncome, 'f', 2, 64)},
			})
			return nil
		},
	}
}

func newCDKCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cdk",
		Short: "Операции с CDK",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "use <cdk>",
		Short: "Активировать CDK для своего аккаунта (user)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.require(role.User)
			if err != nil {
				return err
			}
			code := strings.TrimSpace(args[0])
			if code == "" {
				return errIncomplete
			}
			res := a.api.UseCDK(cmdContext(cmd), token, code)
			if err := check(res); err != nil {
				return err
			}
			a.success("%s", res.Message("CDK 激活成功"))
			return nil
		},
	})
	return cmd
}

// --- Вспомогательные функции ---

func pageParams(page, size int) pagination.Params {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = pagination.DefaultSize
	}
	return pagination.Params{Current: page, Size: size}
}

func pageFooter[T any](a *app, p pagination.Page[T]) {
	fmt.Fprintf(a.out, "\n第 %d/%d 页，共 %d 条\n", p.Current, p.Pages, p.Total)
}

func section(a *app, tab string, n int) {
	fmt.Fprintf(a.out, "\n%s (%d)\n", model.QueueLabel(tab), n)
}

// accountState: подпись состояния аккаунта в списке.
func accountState(acc model.Account, now time.Time) string {
	switch {
	case acc.Deleted():
		return "已删除"
	case acc.Frozen():
		return "已冻结"
	case acc.Expired(now):
		return "已过期"
	default:
		return "正常"
	}
}

// maskToken оставляет первые и последние 4 символа.
func maskToken(token string) string {
	r := []rune(token)
	if len(r) <= 8 {
		return strings.Repeat("*", len(r))
	}
	return string(r[:4]) + strings.Repeat("*", len(r)-8) + string(r[len(r)-4:])
}
