package viewstate

import (
	"errors"

	"sanogenic/internal/task"
)

const intensityMessage = "Интенсивность должна быть от 1 до 10."

var messages = map[task.ErrorKind]string{
	task.ErrorKindEmptyInput:    "Пожалуйста, заполните поле ввода.",
	task.ErrorKindInvalidInput:  "Проверьте введённые данные и попробуйте снова.",
	task.ErrorKindNoCredential:  "API-ключ не найден. Задайте переменную GEMINI_API_KEY (ключ начинается на AIza) и перезапустите приложение.",
	task.ErrorKindUnauthorized:  "Ключ отклонён сервисом. Проверьте правильность ключа в Google AI Studio.",
	task.ErrorKindRateLimited:   "Превышен лимит запросов. Подождите немного и попробуйте снова.",
	task.ErrorKindRegionBlocked: "Сервис недоступен в вашем регионе.",
	task.ErrorKindUnknown:       "Не удалось связаться с ИИ. Проверьте подключение и попробуйте ещё раз.",
	task.ErrorKindBadResponse:   "ИИ вернул ответ в неожиданном формате. Попробуйте отправить запрос ещё раз.",
}

// Message returns the single user-facing message for err. Diagnostic detail
// is appended only when showDiagnostics is set.
func Message(err error, showDiagnostics bool) string {
	if err == nil {
		return ""
	}
	kind := task.KindOf(err)
	msg, ok := messages[kind]
	switch {
	case !ok:
		msg = messages[task.ErrorKindUnknown]
	case kind == task.ErrorKindInvalidInput && errors.Is(err, task.ErrIntensityOutOfRange):
		msg = intensityMessage
	}
	if !showDiagnostics {
		return msg
	}
	if d := Diagnostic(err); d != "" {
		msg += "\n[" + string(kind) + "] " + d
	}
	return msg
}

// Diagnostic returns the detail carried by a *task.Error, or err.Error() for
// any other error.
func Diagnostic(err error) string {
	if err == nil {
		return ""
	}
	var te *task.Error
	if errors.As(err, &te) {
		if te.Diagnostic != "" {
			return te.Diagnostic
		}
		if te.Err != nil {
			return te.Err.Error()
		}
		return ""
	}
	return err.Error()
}
