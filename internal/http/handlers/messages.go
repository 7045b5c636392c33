package handlers

import "qrkot/internal/middleware"

const (
	codeBadRequest      = "bad_request"
	codeValidation      = "validation_error"
	codeDuplicateName   = "duplicate_name"
	codeProjectClosed   = "project_closed"
	codeAlreadyInvested = "project_invested"
	codeBelowInvested   = "amount_below_invested"
	codeNotFound        = "not_found"
	codeUnauthorized    = "unauthorized"
	codeForbidden       = "forbidden"
	codeRateLimited     = "rate_limited"
	codeInternal        = "internal"
)

var messages = map[string]map[string]string{
	middleware.LocaleEnglish: {
		codeBadRequest:      "Invalid request payload.",
		codeValidation:      "Invalid data",
		codeDuplicateName:   "A project with this name already exists!",
		codeProjectClosed:   "A closed project cannot be edited!",
		codeAlreadyInvested: "The project has received funds and cannot be deleted!",
		codeBelowInvested:   "full_amount cannot be set below the amount already invested.",
		codeNotFound:        "Project not found!",
		codeUnauthorized:    "Authentication required.",
		codeForbidden:       "Only superusers may do this.",
		codeRateLimited:     "Too many requests, try again later.",
		codeInternal:        "Internal server error.",
	},
	middleware.LocaleRussian: {
		codeBadRequest:      "Некорректное тело запроса.",
		codeValidation:      "Некорректные данные",
		codeDuplicateName:   "Проект с таким именем уже существует!",
		codeProjectClosed:   "Закрытый проект нельзя редактировать!",
		codeAlreadyInvested: "В проект были внесены средства, не подлежит удалению!",
		codeBelowInvested:   "Нельзя установить значение full_amount меньше уже вложенной суммы.",
		codeNotFound:        "Проект не найден!",
		codeUnauthorized:    "Требуется авторизация.",
		codeForbidden:       "Доступно только суперпользователям.",
		codeRateLimited:     "Слишком много запросов, попробуйте позже.",
		codeInternal:        "Внутренняя ошибка сервера.",
	},
}

func message(locale, code string) string {
	if byCode, ok := messages[locale]; ok {
		if msg, ok := byCode[code]; ok {
			return msg
		}
	}
	return messages[middleware.LocaleEnglish][code]
}
