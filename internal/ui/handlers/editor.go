// editor.go: общий разбор формы редактора аккаунта.
// Действия со списком боёв (fight_*) перерисовывают форму без обращения
// к бэкенду; только op=save отправляет изменения.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/cwxsss/inquisition-panel/internal/accountconfig"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
)

// editorForm: разобранная форма редактора.
type editorForm struct {
	Editor  *accountconfig.Editor
	Op      accountconfig.Op
	Account model.Account
	Days    int
}

// Save сообщает, что нажата кнопка сохранения.
func (f editorForm) Save() bool {
	return f.Op.Kind == accountconfig.OpSave
}

// parseEditorForm восстанавливает редактор и основные поля аккаунта из формы.
func parseEditorForm(r *http.Request) (editorForm, error) {
	if err := r.ParseForm(); err != nil {
		return editorForm{}, fmt.Errorf("разбор формы: %w", err)
	}
	ed, err := accountconfig.EditorFromForm(r.PostForm)
	if err != nil {
		return editorForm{}, err
	}
	op, err := accountconfig.ParseOp(r.PostForm.Get(accountconfig.FormOp))
	if err != nil {
		return editorForm{}, err
	}

	acc := model.Account{
		ID:         formInt(r, "id", 0),
		Name:       formText(r, "name"),
		Account:    formText(r, "account"),
		Password:   r.PostForm.Get("password"),
		Server:     formInt(r, "server", model.ServerOfficial),
		TaskType:   formText(r, "taskType"),
		ExpireTime: formText(r, "expireTime"),
	}
	if acc.TaskType == "" {
		acc.TaskType = model.TaskDaily
	}

	return editorForm{
		Editor:  ed,
		Op:      op,
		Account: acc,
		Days:    formInt(r, "days", model.DefaultAccountDays),
	}, nil
}

// accountFields: тело сохранения аккаунта из основных полей и редактора.
// Пустой пароль не отправляется; срок передаётся только при withExpire.
func accountFields(acc model.Account, ed *accountconfig.Editor, withExpire bool) map[string]any {
	fields := map[string]any{
		"name":     acc.Name,
		"account":  acc.Account,
		"server":   acc.Server,
		"taskType": acc.TaskType,
		"config":   ed.Config,
		"active":   ed.Active,
		"notice":   ed.Notice,
	}
	if acc.Password != "" {
		fields["password"] = acc.Password
	}
	if withExpire && acc.ExpireTime != "" {
		fields["expireTime"] = acc.ExpireTime
	}
	return fields
}
