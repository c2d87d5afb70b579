package apierr

var (
	BadRequest = APIError{
		Code:    "INVALID_REQUEST",
		Message: "invalid request body",
	}
	Unauthorized = APIError{
		Code:    "UNAUTHORIZED",
		Message: "authentication required",
	}
	InvalidCredentials = APIError{
		Code:    "INVALID_CREDENTIALS",
		Message: "bad username or password",
	}
	NotFound = APIError{
		Code:    "NOT_FOUND",
		Message: "resource not found",
	}
	InternalServerError = APIError{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "internal server error",
	}
	AlreadyMember = APIError{
		Code:    "ALREADY_MEMBER",
		Message: "you are already a member of this team",
	}
	TeamNotOpen = APIError{
		Code:    "TEAM_NOT_OPEN",
		Message: "team is not open for new members",
	}
	NotAMember = APIError{
		Code:    "NOT_A_MEMBER",
		Message: "you are not a member of this team",
	}
	LeaderCannotLeave = APIError{
		Code:    "LEADER_CANNOT_LEAVE",
		Message: "leader cannot leave while the team has other members; transfer leadership or disband",
	}
	NotLeader = APIError{
		Code:    "NOT_LEADER",
		Message: "only the team leader can do this",
	}
	CannotRemoveSelf = APIError{
		Code:    "CANNOT_REMOVE_SELF",
		Message: "leader cannot remove themselves",
	}
	NotCreator = APIError{
		Code:    "NOT_CREATOR",
		Message: "only the competition creator can do this",
	}
	UsernameTaken = APIError{
		Code:    "USERNAME_TAKEN",
		Message: "username already exists",
	}
	EmailTaken = APIError{
		Code:    "EMAIL_TAKEN",
		Message: "email already exists",
	}
	CompetitionHasTeams = APIError{
		Code:    "COMPETITION_HAS_TEAMS",
		Message: "competition still has teams; disband them first",
	}
)
